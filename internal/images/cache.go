// Package images downloads art thumbnails and re-encodes them into a compact
// local cache keyed by record uid.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Cache converts remote thumbnails to local JPEG files. The presence of the
// destination file is the cache key; an existing file is assumed current.
type Cache struct {
	http    *resty.Client
	quality int
	log     zerolog.Logger
}

// New builds a Cache encoding at the given JPEG quality (1-100).
func New(quality int, log zerolog.Logger) *Cache {
	c := resty.New().SetTimeout(time.Minute)
	return &Cache{http: c, quality: quality, log: log}
}

// Ensure downloads url and writes it to outputPath as JPEG, skipping the
// download entirely when outputPath already exists. The caller treats an
// error as recoverable: the record keeps its remote URL and the batch
// continues.
func (c *Cache) Ensure(ctx context.Context, url, outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		c.log.Debug().Str("file", filepath.Base(outputPath)).Msg("exists already")
		return nil
	}

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode())
	}
	raw := resp.Body()

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return fmt.Errorf("encode %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	ratio := 0
	if buf.Len() > 0 {
		ratio = len(raw) * 100 / buf.Len()
	}
	c.log.Info().
		Str("file", filepath.Base(outputPath)).
		Int("bytes", buf.Len()).
		Int("ratio_pct", ratio).
		Msg("wrote image")
	return nil
}
