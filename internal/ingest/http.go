package ingest

import (
	"context"

	"github.com/AngelCh415/marketing-etl/internal/utils"
)

// GetWithRetry fetches url, retrying transport errors and non-2xx answers
// with exponential backoff.
func GetWithRetry(ctx context.Context, c HTTPClient, url string, b utils.Backoff) ([]byte, error) {
	var body []byte
	err := b.Do(ctx, func(int) error {
		var err error
		body, err = fetch(ctx, c, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
