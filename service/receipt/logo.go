package receipt

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const maxLogoSize = 5 << 20

// HTTPLogoFetcher downloads gym logos. Deadlines come from the caller's context.
type HTTPLogoFetcher struct {
	client *http.Client
}

func NewHTTPLogoFetcher(client *http.Client) *HTTPLogoFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLogoFetcher{client: client}
}

func (f *HTTPLogoFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch logo: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxLogoSize))
}
