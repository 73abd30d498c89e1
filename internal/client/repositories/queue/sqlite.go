package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/common"
	"github.com/dmitrijs2005/offlinesync/internal/dbx"
)

// SQLiteRepository implements Repository over the unsent_requests table.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithTx returns a copy of the repository that runs on tx.
func (r *SQLiteRepository) WithTx(tx dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: tx, now: r.now}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, serialized []byte) (*models.PendingRequest, error) {
	if serialized == nil {
		serialized = []byte{}
	}
	created := r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO unsent_requests (request, status, created_at) VALUES (?, ?, ?)`,
		serialized, int(models.StatusNotUpdated), created)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return &models.PendingRequest{
		ID:                id,
		SerializedRequest: serialized,
		Status:            models.StatusNotUpdated,
		CreatedAt:         created,
	}, nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.PendingRequest, error) {
	rows, err := r.db.QueryContext(ctx, `select id, request, status, created_at from unsent_requests order by id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsent requests: %w", err)
	}
	defer rows.Close()

	var result []*models.PendingRequest
	for rows.Next() {
		item := &models.PendingRequest{}
		var status int
		if err := rows.Scan(&item.ID, &item.SerializedRequest, &status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unsent request: %w", err)
		}
		item.Status = models.Status(status)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate unsent requests: %w", err)
	}
	return result, nil
}

// exec runs a statement that must touch exactly one request.
func (r *SQLiteRepository) exec(ctx context.Context, op string, id int64, query string, args ...any) error {
	ra, err := dbx.ExecCount(ctx, r.db, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s request %d: %w", op, id, err)
	}
	if ra != 1 {
		return fmt.Errorf("failed to %s request %d: %w", op, id, common.ErrorNotFound)
	}
	return nil
}

func (r *SQLiteRepository) MarkUpdating(ctx context.Context, id int64) error {
	return r.exec(ctx, "mark updating", id,
		`update unsent_requests set status=? where id=?`, int(models.StatusUpdating), id)
}

func (r *SQLiteRepository) MarkDelivered(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete delivered", id, `DELETE FROM unsent_requests WHERE id=?`, id)
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64) error {
	return r.exec(ctx, "mark failed", id,
		`update unsent_requests set status=? where id=?`, int(models.StatusNotUpdated), id)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM unsent_requests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unsent requests: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) ResetUpdating(ctx context.Context) (int64, error) {
	n, err := dbx.ExecCount(ctx, r.db, `update unsent_requests set status=? where status=?`,
		int(models.StatusNotUpdated), int(models.StatusUpdating))
	if err != nil {
		return 0, fmt.Errorf("failed to reset unsent requests: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) FlushAll(ctx context.Context) (int64, error) {
	n, err := dbx.ExecCount(ctx, r.db, `DELETE FROM unsent_requests`)
	if err != nil {
		return 0, fmt.Errorf("failed to flush unsent requests: %w", err)
	}
	return n, nil
}
