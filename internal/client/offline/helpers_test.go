package offline

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/offlinesync/internal/client/future"
	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/client/store"
	"github.com/dmitrijs2005/offlinesync/internal/common"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

type getFunc func(ctx context.Context, url string) ([]byte, error)
type postFunc func(ctx context.Context, url string, payload []byte) ([]byte, error)

// fakeNetwork is offline until handlers are installed.
type fakeNetwork struct {
	mu    sync.Mutex
	get   getFunc
	post  postFunc
	calls []string

	gets  atomic.Int32
	posts atomic.Int32
}

func (f *fakeNetwork) setGet(fn getFunc) {
	f.mu.Lock()
	f.get = fn
	f.mu.Unlock()
}

func (f *fakeNetwork) setPost(fn postFunc) {
	f.mu.Lock()
	f.post = fn
	f.mu.Unlock()
}

func (f *fakeNetwork) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeNetwork) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeNetwork) Get(ctx context.Context, url string) ([]byte, error) {
	f.gets.Add(1)
	f.record("GET " + url)
	f.mu.Lock()
	fn := f.get
	f.mu.Unlock()
	if fn == nil {
		return nil, common.ErrUnavailable
	}
	return fn(ctx, url)
}

func (f *fakeNetwork) Post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	f.posts.Add(1)
	f.record("POST " + url + " " + string(payload))
	return f.doPost(ctx, url, payload)
}

func (f *fakeNetwork) Send(ctx context.Context, req *models.Request) ([]byte, error) {
	f.posts.Add(1)
	f.record("SEND " + req.Method + " " + req.URL)
	return f.doPost(ctx, req.URL, req.Body)
}

func (f *fakeNetwork) doPost(ctx context.Context, url string, payload []byte) ([]byte, error) {
	f.mu.Lock()
	fn := f.post
	f.mu.Unlock()
	if fn == nil {
		return nil, common.ErrUnavailable
	}
	return fn(ctx, url, payload)
}

func respond(payload []byte) getFunc {
	return func(context.Context, string) ([]byte, error) {
		return append([]byte(nil), payload...), nil
	}
}

func accept(reply string) postFunc {
	return func(context.Context, string, []byte) ([]byte, error) {
		return []byte(reply), nil
	}
}

type result struct {
	v   []byte
	err error
}

func collect() (Completion, chan result) {
	ch := make(chan result, 16)
	return func(v []byte, err error) { ch <- result{v, err} }, ch
}

func collectOffline() (OfflineCompletion, chan []byte) {
	ch := make(chan []byte, 16)
	return func(v []byte) { ch <- v }, ch
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for callback")
	}
	var zero T
	return zero
}

func requireNone[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected callback: %v", v)
	default:
	}
}

func await[T any](t *testing.T, f *future.Future[T]) (T, error) {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(waitFor):
		t.Fatal("future never resolved")
	}
	return f.Wait(context.Background())
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestEngine(t *testing.T, net NetworkClient, opts ...Option) *Engine {
	t.Helper()
	e, err := Open(context.Background(), openDB(t), net, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func recordStatus(t *testing.T, e *Engine, url string) models.Status {
	t.Helper()
	rec, err := e.data.Get(context.Background(), url)
	require.NoError(t, err)
	require.NotNil(t, rec, "no record for %s", url)
	return rec.Status
}

// peekStatus is safe to call from require.Eventually; -1 means no record.
func peekStatus(e *Engine, url string) models.Status {
	rec, err := e.data.Get(context.Background(), url)
	if err != nil || rec == nil {
		return -1
	}
	return rec.Status
}
