// Package ingest fetches raw records from the upstream event API.
package ingest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/dtarnawsky/dust/internal/model"
)

// Client wraps the upstream API with Basic auth and retry on transient
// failures. Fetches are strictly sequential; the ingestion run never fans out.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// New builds a Client for the given API root. key is sent base64-encoded as
// HTTP Basic authorization on every request.
func New(baseURL, key string, log zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(key))).
		SetTimeout(2 * time.Minute)

	return &Client{http: c, log: log}
}

// FetchRecords retrieves the raw record array for one dataset kind and year,
// e.g. kind "camp", year "2023". Transient transport errors and 5xx responses
// are retried with exponential backoff; 4xx responses fail immediately.
func (c *Client) FetchRecords(ctx context.Context, kind, year string) ([]model.RawRecord, error) {
	c.log.Info().Str("kind", kind).Str("year", year).Msg("downloading records")

	var body []byte
	op := func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("year", year).
			Get("/" + kind)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode() == http.StatusOK:
			body = resp.Body()
			return nil
		case resp.StatusCode() >= 500:
			return fmt.Errorf("upstream status %d", resp.StatusCode())
		default:
			return backoff.Permanent(fmt.Errorf("upstream status %d: %s", resp.StatusCode(), resp.String()))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", kind, year, err)
	}

	var records []model.RawRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", kind, year, err)
	}
	c.log.Info().Str("kind", kind).Str("year", year).Int("count", len(records)).Msg("records downloaded")
	return records, nil
}
