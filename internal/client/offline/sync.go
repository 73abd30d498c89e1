package offline

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/client/repositories/cache"
	"github.com/dmitrijs2005/offlinesync/internal/common"
	"golang.org/x/sync/errgroup"
)

// SyncReport summarises one Synchronize run.
type SyncReport struct {
	// Total is the queue length when the run started.
	Total int

	// Delivered counts requests sent and removed from the queue.
	Delivered int

	// Dropped counts queued entries removed without being delivered: ones
	// that could not be decoded or that failed with a permanent error.
	Dropped int

	// Aborted is set when the run stopped before the end of the queue; Err
	// holds the cause.
	Aborted bool
	Err     error

	// Refreshed and RefreshFailed count stale cache records re-fetched
	// after the queue drained (WithRefreshOnSync).
	Refreshed     int
	RefreshFailed int
}

func (r SyncReport) String() string {
	s := fmt.Sprintf("%d of %d delivered", r.Delivered, r.Total)
	if r.Dropped > 0 {
		s += fmt.Sprintf(", %d dropped", r.Dropped)
	}
	if r.Aborted && r.Err != nil {
		s += fmt.Sprintf(" (stopped: %v)", r.Err)
	}
	if r.Refreshed > 0 || r.RefreshFailed > 0 {
		s += fmt.Sprintf(", %d refreshed, %d refresh failed", r.Refreshed, r.RefreshFailed)
	}
	return s
}

// Synchronize resends queued requests oldest first and stops at the first
// one that fails; that request and everything after it stay queued. Only
// one run is active at a time: a concurrent call returns
// common.ErrSyncInProgress. Delivery failures are reported in the
// SyncReport; the returned error is for runs that could not start.
func (e *Engine) Synchronize(ctx context.Context) (SyncReport, error) {
	if !e.syncing.CompareAndSwap(false, true) {
		return SyncReport{}, common.ErrSyncInProgress
	}
	defer e.syncing.Store(false)

	if !e.begin() {
		return SyncReport{}, common.ErrEngineClosed
	}
	defer e.wg.Done()

	pending, err := e.queue.ListPending(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("synchronize: %w", err)
	}

	report := SyncReport{Total: len(pending)}
	if len(pending) > 0 {
		e.logger.Info(ctx, "synchronize started", "pending", len(pending))
	}

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			report.Aborted, report.Err = true, err
			break
		}
		if err := e.resend(ctx, p, &report); err != nil {
			report.Aborted, report.Err = true, err
			e.logger.Info(ctx, "synchronize stopped", "id", p.ID, "error", err)
			break
		}
	}

	if e.opts.refreshOnSync && !report.Aborted {
		report.Refreshed, report.RefreshFailed = e.refreshStale(ctx)
	}

	if report.Total > 0 || report.Refreshed > 0 || report.RefreshFailed > 0 {
		e.logger.Info(ctx, "synchronize finished", "report", report.String())
	}
	return report, nil
}

// SynchronizeAtLaunch runs Synchronize once. Call it after opening the engine.
func (e *Engine) SynchronizeAtLaunch(ctx context.Context) (SyncReport, error) {
	e.logger.Debug(ctx, "synchronizing at launch")
	return e.Synchronize(ctx)
}

func (e *Engine) resend(ctx context.Context, p *models.PendingRequest, report *SyncReport) error {
	req, err := models.DecodeRequest(p.SerializedRequest)
	if err != nil {
		e.logger.Error(ctx, "dropping undecodable queued request", "id", p.ID, "error", err)
		if err := e.queue.MarkDelivered(ctx, p.ID); err != nil {
			return err
		}
		report.Dropped++
		return nil
	}

	if err := e.queue.MarkUpdating(ctx, p.ID); err != nil {
		return err
	}

	_, _, err = e.deliver(ctx, req)
	wctx := context.WithoutCancel(ctx)
	if err != nil && permanent(err) {
		e.logger.Error(wctx, "dropping queued request that cannot be delivered", "id", p.ID, "url", req.URL, "error", err)
		if err := e.queue.MarkDelivered(wctx, p.ID); err != nil {
			return err
		}
		report.Dropped++
		return nil
	}
	if err != nil {
		if ferr := e.queue.MarkFailed(wctx, p.ID); ferr != nil {
			e.logger.Error(wctx, "failed to revert queued request", "id", p.ID, "error", ferr)
		}
		return err
	}

	if err := e.queue.MarkDelivered(wctx, p.ID); err != nil {
		return err
	}
	report.Delivered++
	e.logger.Debug(ctx, "queued request delivered", "id", p.ID, "url", req.URL)
	return nil
}

// refreshStale re-fetches every NotUpdated cache record through the
// coalescing fetch path, bounded by the worker count.
func (e *Engine) refreshStale(ctx context.Context) (refreshed, failed int) {
	var ok, bad atomic.Int32
	var g errgroup.Group
	g.SetLimit(e.opts.workers)

	caches := []struct {
		repo  cache.Repository
		table cache.Table
	}{
		{e.data, cache.TableData},
		{e.images, cache.TableImages},
	}
	for _, c := range caches {
		urls, err := c.repo.ListByStatus(ctx, models.StatusNotUpdated)
		if err != nil {
			e.logger.Warn(ctx, "failed to list stale records", "cache", string(c.table), "error", err)
			continue
		}
		for _, url := range urls {
			g.Go(func() error {
				_, err, _ := e.fetches.Do(ctx, fetchKey(c.table, url), func(ctx context.Context) ([]byte, error) {
					return e.refresh(ctx, c.repo, c.table, url)
				})
				if err != nil {
					bad.Add(1)
				} else {
					ok.Add(1)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
	return int(ok.Load()), int(bad.Load())
}
