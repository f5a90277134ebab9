// Package storage menyimpan berkas unggahan (dokumen pendaftar, bukti bayar)
// ke Supabase Storage, Aliyun OSS atau Backblaze B2.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"ppdb_backend/internals/configs"
)

// BlobStore dipakai controller upload; implementasi: SupabaseStore, OSSStore, B2Store, MemoryStore.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (publicURL string, err error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// New memilih backend dari STORAGE_DRIVER.
func New(cfg configs.AppConfig) (BlobStore, error) {
	switch cfg.StorageDriver {
	case "", "supabase":
		return NewSupabaseStore(cfg.SupabaseProjectURL, cfg.SupabaseServiceRoleKey, cfg.SupabaseBucket, nil)
	case "oss":
		return NewOSSStore(OSSConfig{
			Endpoint:      cfg.OSSEndpoint,
			AccessKey:     cfg.OSSAccessKey,
			SecretKey:     cfg.OSSSecretKey,
			Bucket:        cfg.OSSBucket,
			PublicBaseURL: cfg.OSSPublicBaseURL,
		})
	case "b2":
		return NewB2Store(context.Background(), B2Config{
			AccountID:     cfg.B2AccountID,
			AppKey:        cfg.B2AppKey,
			Bucket:        cfg.B2Bucket,
			PublicBaseURL: cfg.B2PublicBaseURL,
		})
	case "memory":
		return NewMemoryStore("memory://"), nil
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER tidak dikenal: %s", cfg.StorageDriver)
	}
}

// BuildObjectKey: <dir>/<slug-nama>_<yyyymmdd_hhmmss>_<rand6><ext>
func BuildObjectKey(dir, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	key := fmt.Sprintf("%s_%s_%s%s", slugify(base), time.Now().Format("20060102_150405"), randHex(3), ext)
	if dir = joinParts(strings.Split(dir, "/")...); dir != "" {
		return dir + "/" + key
	}
	return key
}

// ReplaceExt mengganti ekstensi key (dipakai saat gambar di-encode ulang ke .webp).
func ReplaceExt(key, ext string) string {
	return strings.TrimSuffix(key, filepath.Ext(key)) + ext
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-", ".", "-").Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	s = strings.Trim(s, "-")
	if s == "" {
		return "file"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}

func joinParts(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" || p == "." || p == ".." {
			continue
		}
		clean = append(clean, p)
	}
	return strings.Join(clean, "/")
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
