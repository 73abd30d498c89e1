package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/offlinesync/internal/client/future"
	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/client/netclient"
	"github.com/dmitrijs2005/offlinesync/internal/common"
	"github.com/dmitrijs2005/offlinesync/internal/logging"
	"github.com/google/uuid"
)

// Post sends payload to url. If delivery fails the request is queued for
// the next Synchronize and completion receives the network error.
func (e *Engine) Post(ctx context.Context, url string, payload []byte, completion Completion) *future.Future[[]byte] {
	return e.PostRequest(ctx, models.NewPostRequest(url, payload), completion)
}

// PostRequest is Post for an arbitrary request. Method defaults to POST.
//
// A request whose ctx is cancelled before it reaches the network is
// abandoned, not queued. So is one that failed with an error retrying
// cannot fix (see permanent).
func (e *Engine) PostRequest(ctx context.Context, req *models.Request, completion Completion) *future.Future[[]byte] {
	f := future.New[[]byte]()
	finish := func(v []byte, err error) {
		f.Resolve(v, err)
		if completion != nil {
			e.dispatch(func() { completion(v, err) })
		}
	}

	if req == nil {
		finish(nil, fmt.Errorf("%w: nil request", common.ErrInvalidRequest))
		return f
	}
	r := *req
	serialized, err := models.EncodeRequest(&r)
	if err != nil {
		finish(nil, fmt.Errorf("%w: %w", common.ErrInvalidRequest, err))
		return f
	}

	if !e.begin() {
		finish(nil, common.ErrEngineClosed)
		return f
	}

	go func() {
		defer e.wg.Done()

		res, started, err := e.deliver(ctx, &r)
		if err == nil {
			finish(res, nil)
			return
		}
		if !started {
			finish(nil, err)
			return
		}
		if permanent(err) {
			e.logger.Warn(ctx, "request rejected, not queued", "url", r.URL, "error", err)
			finish(nil, err)
			return
		}

		qctx := context.WithoutCancel(ctx)
		pending, qerr := e.queue.Enqueue(qctx, serialized)
		if qerr != nil {
			e.logger.Error(qctx, "failed to queue undelivered request", "url", r.URL, "error", qerr)
			finish(nil, errors.Join(err, fmt.Errorf("queue request: %w", qerr)))
			return
		}
		e.logger.Info(qctx, "request queued", "url", r.URL, "id", pending.ID, "error", err)
		finish(nil, err)
	}()
	return f
}

// deliver performs one network attempt for req. started is false when ctx
// ended while waiting for a worker slot, in which case nothing was sent.
func (e *Engine) deliver(ctx context.Context, req *models.Request) (res []byte, started bool, err error) {
	if err := e.acquire(ctx); err != nil {
		return nil, false, err
	}
	defer e.release()

	attempt := uuid.NewString()
	ctx = logging.ContextWith(netclient.WithCorrelationID(ctx, attempt), "attempt", attempt)
	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	e.logger.Debug(ctx, "sending request", "method", req.Method, "url", req.URL)

	if isPlainPost(req) {
		res, err = e.network.Post(callCtx, req.URL, req.Body)
	} else {
		res, err = e.network.Send(callCtx, req)
	}
	if err != nil {
		return nil, true, err
	}
	if res == nil {
		res = []byte{}
	}
	return res, true, nil
}

func isPlainPost(req *models.Request) bool {
	return req.Method == http.MethodPost && len(req.Header) == 0
}

// permanent reports whether err will recur on every retry of the same
// request, so queueing it would only block the requests behind it.
func permanent(err error) bool {
	return errors.Is(err, common.ErrUnsupportedScheme) || errors.Is(err, common.ErrInvalidRequest)
}
