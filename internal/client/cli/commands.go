package cli

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/dmitrijs2005/offlinesync/internal/client/models"
)

// Get prints the cached copy of url, if any, then the network result.
func (a *App) Get(ctx context.Context, url string) error {
	done := make(chan struct{})
	a.engine.FetchData(ctx, url,
		func(b []byte) { printlnFn("[cached]", string(b)) },
		func(b []byte, err error) {
			defer close(done)
			if err != nil {
				printlnFn("[network] failed:", err)
				return
			}
			printlnFn("[network]", string(b))
		})
	return waitDone(ctx, done)
}

// Image fetches url through the image cache and prints its dimensions.
func (a *App) Image(ctx context.Context, url string) error {
	done := make(chan struct{})
	a.engine.FetchImage(ctx, url,
		func(img image.Image) { printlnFn("[cached]", describeImage(img)) },
		func(img image.Image, err error) {
			defer close(done)
			if err != nil {
				printlnFn("[network] failed:", err)
				return
			}
			printlnFn("[network]", describeImage(img))
		})
	return waitDone(ctx, done)
}

func describeImage(img image.Image) string {
	b := img.Bounds()
	return fmt.Sprintf("image %dx%d", b.Dx(), b.Dy())
}

func waitDone(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post sends body to url; undelivered posts stay queued for the next sync.
func (a *App) Post(ctx context.Context, url string, body string) error {
	before, _ := a.engine.PendingCount(ctx)
	res, err := a.engine.Post(ctx, url, []byte(body), nil).Wait(ctx)
	if err != nil {
		if after, cerr := a.engine.PendingCount(ctx); cerr == nil && after > before {
			printlnFn("[queued] not delivered:", err)
			return nil
		}
		return err
	}
	printlnFn("[delivered]", string(res))
	return nil
}

// Sync replays the unsent queue and prints the report.
func (a *App) Sync(ctx context.Context) error {
	report, err := a.engine.Synchronize(ctx)
	if err != nil {
		return err
	}
	printlnFn("sync:", report.String())
	return nil
}

// ListPending prints the unsent queue in delivery order.
func (a *App) ListPending(ctx context.Context) error {
	pending, err := a.engine.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		printlnFn("No pending requests")
		return nil
	}
	for _, p := range pending {
		printlnFn(describePending(p))
	}
	return nil
}

func describePending(p *models.PendingRequest) string {
	created := p.CreatedAt.Local().Format(time.DateTime)
	req, err := models.DecodeRequest(p.SerializedRequest)
	if err != nil {
		return fmt.Sprintf("#%d %s <undecodable> %s", p.ID, p.Status, created)
	}
	return fmt.Sprintf("#%d %s %s %s (%d bytes) %s", p.ID, p.Status, req.Method, req.URL, len(req.Body), created)
}

// Flush clears one store, or all of them.
func (a *App) Flush(ctx context.Context, what string) error {
	var n int64
	var err error

	switch what {
	case "data":
		n, err = a.engine.FlushOfflineData(ctx)
	case "images":
		n, err = a.engine.FlushOfflineImages(ctx)
	case "unsent":
		n, err = a.engine.FlushUnsentData(ctx)
	case "all":
		r, err := a.engine.FlushAll(ctx)
		printlnFn(fmt.Sprintf("removed %d data, %d images, %d unsent", r.Data, r.Images, r.Unsent))
		return err
	default:
		return fmt.Errorf("unknown store %q (want data, images, unsent or all)", what)
	}

	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("removed %d %s", n, what))
	return nil
}
