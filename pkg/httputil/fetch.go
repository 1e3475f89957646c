package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	fetchAttempts = 3
	fetchBackoff  = 500 * time.Millisecond

	// maxDocumentSize caps a fetched body at 16 MiB. Atlas documents are
	// JSON a few kilobytes long; anything near this limit is not one.
	maxDocumentSize = 16 << 20
)

// Fetch GETs url and returns the response body. Network errors and 5xx
// responses are retried with exponential backoff; 4xx responses fail
// immediately. A nil client uses http.DefaultClient.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var body []byte
	err := Retry(ctx, fetchAttempts, fetchBackoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return Retryable(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return Retryable(fmt.Errorf("GET %s: %s", url, resp.Status))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("GET %s: %s", url, resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
		if err != nil {
			return Retryable(fmt.Errorf("GET %s: read body: %w", url, err))
		}
		if len(body) > maxDocumentSize {
			return fmt.Errorf("GET %s: body exceeds %d bytes", url, maxDocumentSize)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
