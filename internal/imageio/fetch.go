package imageio

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rm-hull/image-editor/internal/pixel"
	"go.uber.org/zap"
)

// HTTPClient is the subset of *http.Client used by Fetcher.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Fetcher struct {
	client HTTPClient
}

func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{}}
}

// IsURL reports whether source should be fetched rather than opened.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch retrieves the raw body at url. The caller must close it.
func (f *Fetcher) Fetch(url string) (io.ReadCloser, error) {
	zap.S().Debugf("Retrieving: %s", url)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", url, err)
	}

	if res.StatusCode > 299 {
		_ = res.Body.Close()
		return nil, fmt.Errorf("http status response from %s: %s", url, res.Status)
	}

	return res.Body, nil
}

// FetchBuffer retrieves and decodes the image at url.
func (f *Fetcher) FetchBuffer(url string) (*pixel.Buffer, error) {
	body, err := f.Fetch(url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()
	return Decode(body)
}

// Open loads source from disk, or over HTTP when it looks like a URL.
func (f *Fetcher) Open(source string) (*pixel.Buffer, error) {
	if IsURL(source) {
		return f.FetchBuffer(source)
	}
	return Load(source)
}
