package offline

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/dmitrijs2005/offlinesync/internal/client/future"
	"github.com/dmitrijs2005/offlinesync/internal/client/repositories/cache"
)

// ImageOfflineCompletion receives the decoded cached image of a URL.
type ImageOfflineCompletion func(img image.Image)

// ImageCompletion receives the decoded image from a network attempt.
type ImageCompletion func(img image.Image, err error)

// FetchImage is FetchImageData with decoding. A cached blob that does not
// decode is skipped as if there were no cached record. A downloaded blob is
// cached whether or not it decodes; a decode error goes to online.
func (e *Engine) FetchImage(ctx context.Context, url string, offline ImageOfflineCompletion, online ImageCompletion) *future.Future[image.Image] {
	f := future.New[image.Image]()

	var off func([]byte)
	if offline != nil {
		off = func(b []byte) {
			img, err := decodeImage(b)
			if err != nil {
				e.logger.Warn(ctx, "cached image does not decode", "url", url, "error", err)
				return
			}
			offline(img)
		}
	}

	e.fetch(ctx, e.images, cache.TableImages, url, off, func(b []byte, err error) {
		var img image.Image
		if err == nil {
			img, err = decodeImage(b)
		}
		f.Resolve(img, err)
		if online != nil {
			e.dispatch(func() { online(img, err) })
		}
	})
	return f
}

func decodeImage(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
