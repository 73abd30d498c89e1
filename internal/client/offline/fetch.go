package offline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/offlinesync/internal/client/future"
	"github.com/dmitrijs2005/offlinesync/internal/client/netclient"
	"github.com/dmitrijs2005/offlinesync/internal/client/repositories/cache"
	"github.com/dmitrijs2005/offlinesync/internal/common"
	"github.com/dmitrijs2005/offlinesync/internal/logging"
	"github.com/google/uuid"
)

// OfflineCompletion receives the cached payload of a URL. It is only called
// when a cached record exists.
type OfflineCompletion func(payload []byte)

// Completion receives the outcome of a network attempt: either a result or
// an error, never both.
type Completion func(result []byte, err error)

// FetchData serves url from the data cache through offline, then refreshes
// it from the network and reports the outcome through online. Either
// callback may be nil. Concurrent fetches of the same url share one
// network call.
func (e *Engine) FetchData(ctx context.Context, url string, offline OfflineCompletion, online Completion) *future.Future[[]byte] {
	return e.fetchBytes(ctx, e.data, cache.TableData, url, offline, online)
}

// FetchImageData is FetchData over the image cache, returning raw blobs.
func (e *Engine) FetchImageData(ctx context.Context, url string, offline OfflineCompletion, online Completion) *future.Future[[]byte] {
	return e.fetchBytes(ctx, e.images, cache.TableImages, url, offline, online)
}

func (e *Engine) fetchBytes(ctx context.Context, repo cache.Repository, table cache.Table, url string, offline OfflineCompletion, online Completion) *future.Future[[]byte] {
	f := future.New[[]byte]()
	e.fetch(ctx, repo, table, url, offline, func(v []byte, err error) {
		f.Resolve(v, err)
		if online != nil {
			e.dispatch(func() { online(v, err) })
		}
	})
	return f
}

// fetch hands the cached payload to offline before starting the refresh,
// so the offline callback always precedes the network outcome. done runs
// on the goroutine that waited for the network.
func (e *Engine) fetch(ctx context.Context, repo cache.Repository, table cache.Table, url string, offline func([]byte), done func([]byte, error)) {
	if strings.TrimSpace(url) == "" {
		done(nil, fmt.Errorf("%w: empty url", common.ErrInvalidRequest))
		return
	}
	if !e.begin() {
		done(nil, common.ErrEngineClosed)
		return
	}

	rec, err := repo.Get(ctx, url)
	if err != nil {
		e.logger.Warn(ctx, "cache read failed", "cache", string(table), "url", url, "error", err)
	}
	if rec != nil && offline != nil {
		payload := rec.Payload
		e.dispatch(func() { offline(payload) })
	}

	go func() {
		defer e.wg.Done()

		v, err, shared := e.fetches.Do(ctx, fetchKey(table, url), func(ctx context.Context) ([]byte, error) {
			return e.refresh(ctx, repo, table, url)
		})
		if shared {
			v = bytes.Clone(v)
		}
		done(v, err)
	}()
}

func fetchKey(table cache.Table, url string) string {
	return string(table) + "|" + url
}

// refresh is one network attempt for url. The record goes Updating, then
// Updated with the new payload on success or back to NotUpdated on failure.
// A flush of the cache during the attempt wins: the payload is returned
// but not stored.
// Only waiting for a worker slot observes ctx cancellation.
func (e *Engine) refresh(ctx context.Context, repo cache.Repository, table cache.Table, url string) ([]byte, error) {
	if !e.begin() {
		return nil, common.ErrEngineClosed
	}
	defer e.wg.Done()

	if err := e.acquire(ctx); err != nil {
		return nil, err
	}
	defer e.release()

	attempt := uuid.NewString()
	ctx = netclient.WithCorrelationID(context.WithoutCancel(ctx), attempt)
	ctx = logging.ContextWith(ctx, "attempt", attempt)
	log := e.logger.With("cache", string(table), "url", url)

	gate := e.gate(table)
	epoch := gate.current()

	if err := repo.MarkUpdating(ctx, url); err != nil {
		log.Warn(ctx, "failed to mark record updating", "error", err)
		return nil, err
	}
	log.Debug(ctx, "fetch started")

	callCtx, cancel := e.callContext(ctx)
	payload, err := e.network.Get(callCtx, url)
	cancel()
	if err != nil {
		e.revert(ctx, log, repo, url)
		log.Info(ctx, "fetch failed", "error", err)
		return nil, err
	}
	if payload == nil {
		payload = []byte{}
	}

	stored, err := gate.store(epoch, func() error { return repo.Put(ctx, url, payload) })
	if err != nil {
		e.revert(ctx, log, repo, url)
		log.Error(ctx, "failed to store fetched payload", "error", err)
		return nil, err
	}
	if !stored {
		log.Debug(ctx, "cache flushed during fetch, payload not stored")
	}

	log.Debug(ctx, "fetch succeeded", "bytes", len(payload))
	return payload, nil
}

func (e *Engine) revert(ctx context.Context, log logging.Logger, repo cache.Repository, url string) {
	if err := repo.MarkNotUpdated(ctx, url); err != nil {
		log.Error(ctx, "failed to revert record status", "error", err)
	}
}
