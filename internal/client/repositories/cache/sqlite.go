package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/dbx"
)

// Table names a cache table.
type Table string

const (
	TableData   Table = "offline_data"
	TableImages Table = "offline_images"
)

// Valid reports whether t is a known cache table. Table names are spliced
// into SQL, so only these two are accepted.
func (t Table) Valid() bool {
	return t == TableData || t == TableImages
}

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db    dbx.DBTX
	table Table
	now   func() time.Time
}

// NewSQLiteRepository returns a repository bound to table. It panics on an
// unknown table since that is a programming error.
func NewSQLiteRepository(db dbx.DBTX, table Table) *SQLiteRepository {
	if !table.Valid() {
		panic(fmt.Sprintf("cache: unknown table %q", table))
	}
	return &SQLiteRepository{db: db, table: table, now: func() time.Time { return time.Now().UTC() }}
}

// WithTx returns a copy of the repository that runs on tx.
func (r *SQLiteRepository) WithTx(tx dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: tx, table: r.table, now: r.now}
}

func (r *SQLiteRepository) Get(ctx context.Context, url string) (*models.CacheRecord, error) {
	query := fmt.Sprintf(`select url, payload, status, updated_at from %s where url=?`, r.table)
	row := r.db.QueryRowContext(ctx, query, url)

	rec := &models.CacheRecord{}
	var status int
	err := row.Scan(&rec.URL, &rec.Payload, &status, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%s]: %w", r.table, url, err)
	}
	if rec.Payload == nil {
		rec.Payload = []byte{}
	}
	rec.Status = models.Status(status)
	return rec, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, url string, payload []byte) error {
	if payload == nil {
		payload = []byte{}
	}
	query := fmt.Sprintf(`INSERT INTO %s (url, payload, status, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(url) DO UPDATE SET payload = excluded.payload,
				status = excluded.status,
				updated_at = excluded.updated_at`, r.table)
	_, err := r.db.ExecContext(ctx, query, url, payload, int(models.StatusUpdated), r.now())
	if err != nil {
		return fmt.Errorf("failed to put %s[%s]: %w", r.table, url, err)
	}
	return nil
}

func (r *SQLiteRepository) setStatus(ctx context.Context, url string, status models.Status) error {
	query := fmt.Sprintf(`update %s set status=? where url=?`, r.table)
	if _, err := r.db.ExecContext(ctx, query, int(status), url); err != nil {
		return fmt.Errorf("failed to set %s[%s] status %s: %w", r.table, url, status, err)
	}
	return nil
}

func (r *SQLiteRepository) MarkUpdating(ctx context.Context, url string) error {
	return r.setStatus(ctx, url, models.StatusUpdating)
}

func (r *SQLiteRepository) MarkNotUpdated(ctx context.Context, url string) error {
	return r.setStatus(ctx, url, models.StatusNotUpdated)
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, status models.Status) ([]string, error) {
	query := fmt.Sprintf(`select url from %s where status=? order by rowid`, r.table)
	rows, err := r.db.QueryContext(ctx, query, int(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.table, err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", r.table, err)
	}
	return urls, nil
}

func (r *SQLiteRepository) ResetUpdating(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`update %s set status=? where status=?`, r.table)
	n, err := dbx.ExecCount(ctx, r.db, query, int(models.StatusNotUpdated), int(models.StatusUpdating))
	if err != nil {
		return 0, fmt.Errorf("failed to reset %s: %w", r.table, err)
	}
	return n, nil
}

func (r *SQLiteRepository) Flush(ctx context.Context) (int64, error) {
	n, err := dbx.ExecCount(ctx, r.db, fmt.Sprintf(`DELETE FROM %s`, r.table))
	if err != nil {
		return 0, fmt.Errorf("failed to flush %s: %w", r.table, err)
	}
	return n, nil
}
