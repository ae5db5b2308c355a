package external

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/davekg8/Virtual-try-on/internal/domain/repositories"
	"github.com/davekg8/Virtual-try-on/internal/domain/valueobjects"
)

const maxFetchSize = 10 * 1024 * 1024 // 10MB

// HTTPImageFetcher resolves garment urls into image bytes by fetching the
// resource directly, so the stored format and MIME type survive unchanged.
// data: urls are decoded in place without a network round trip.
type HTTPImageFetcher struct {
	client *http.Client
}

func NewHTTPImageFetcher() repositories.ImageFetcher {
	return &HTTPImageFetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) (*valueobjects.ImageData, error) {
	if strings.HasPrefix(url, "data:") {
		return decodeDataURL(url)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}

	if len(data) > maxFetchSize {
		return nil, fmt.Errorf("image exceeds %d bytes", maxFetchSize)
	}

	mimeType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		// fall back to content sniffing when the server lies or stays silent
		mimeType = ""
	}

	return valueobjects.NewImageData(data, mimeType)
}

func decodeDataURL(url string) (*valueobjects.ImageData, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data url")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}

	mimeType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("unsupported data url encoding: %s", encoding)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data url payload: %w", err)
	}

	return valueobjects.NewImageData(data, mimeType)
}
