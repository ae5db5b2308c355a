package repositories

import (
	"context"
	"errors"

	"github.com/davekg8/Virtual-try-on/internal/domain/valueobjects"
)

var ErrImageNotFound = errors.New("image not found")

// ImageURLPrefix is the URL prefix under which stored images are served.
// Urls starting with it resolve through the ImageRepository, anything else
// through the ImageFetcher.
const ImageURLPrefix = "/api/images/"

// ImageRepository stores rendered images under opaque references. History
// layers hold references only, never pixel data.
type ImageRepository interface {
	Save(ctx context.Context, image *valueobjects.ImageData) (string, error)
	FindByRef(ctx context.Context, ref string) (*valueobjects.ImageData, error)
}

// ImageFetcher resolves an external image URL into bytes plus MIME type. It
// fetches the resource directly rather than re-encoding through a bitmap
// surface, so the original format survives the round trip.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*valueobjects.ImageData, error)
}
