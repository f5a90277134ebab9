package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kurin/blazer/b2"
	"go.uber.org/zap"
)

type B2Config struct {
	AccountID     string
	AppKey        string
	Bucket        string
	PublicBaseURL string // opsional (CDN); default <download-url>/file/<bucket>
}

// B2Store: Backblaze B2 (STORAGE_DRIVER=b2).
type B2Store struct {
	Client     *b2.Client
	Bucket     *b2.Bucket
	PublicBase string
}

func NewB2Store(ctx context.Context, cfg B2Config) (*B2Store, error) {
	if cfg.AccountID == "" || cfg.AppKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("missing env: B2_ACCOUNT_ID/B2_APP_KEY/B2_BUCKET")
	}
	client, err := b2.NewClient(ctx, cfg.AccountID, cfg.AppKey)
	if err != nil {
		return nil, fmt.Errorf("b2.NewClient: %w", err)
	}
	bkt, err := client.Bucket(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("b2 bucket: %w", err)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("%s/file/%s", strings.TrimRight(bkt.BaseURL(), "/"), bkt.Name())
	}
	zap.L().Info("[B2] bucket siap", zap.String("bucket", cfg.Bucket))
	return &B2Store{Client: client, Bucket: bkt, PublicBase: base}, nil
}

func (s *B2Store) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w := s.Bucket.Object(key).NewWriter(ctx).WithAttrs(&b2.Attrs{ContentType: contentType})
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("b2 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("b2 close: %w", err)
	}
	return s.PublicURL(key), nil
}

func (s *B2Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := s.Bucket.Object(key).Delete(ctx)
	if b2.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *B2Store) PublicURL(key string) string {
	return b2PublicURL(s.PublicBase, key)
}

func b2PublicURL(base, key string) string {
	if key == "" {
		return ""
	}
	return base + "/" + strings.TrimLeft(key, "/")
}
