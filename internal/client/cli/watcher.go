package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/offlinesync/internal/common"
)

const pingTimeout = 3 * time.Second

// StartOnlineStatusWatcher probes the server every interval until ctx is
// done. While the server is reachable, every tick with queued requests
// (and every offline→online transition) triggers a Synchronize.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.checkOnline(ctx)
	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.pinger.Ping(pctx, a.config.ServerEndpointAddr)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	reconnected := a.setMode(ctx, ModeOnline)
	if !reconnected {
		n, err := a.engine.PendingCount(ctx)
		if err != nil {
			a.logger.Warn(ctx, "failed to count pending requests", "error", err)
			return
		}
		if n == 0 {
			return
		}
	}

	report, err := a.engine.Synchronize(ctx)
	if errors.Is(err, common.ErrSyncInProgress) {
		return
	}
	if err != nil {
		a.logger.Warn(ctx, "background synchronize failed", "reconnected", reconnected, "error", err)
		return
	}
	if report.Total > 0 {
		a.logger.Info(ctx, "background synchronize finished", "reconnected", reconnected, "report", report.String())
	}
}
