package storage

import (
	"bytes"
	"context"
)

// Stored = hasil unggah yang disimpan ke tabel.
type Stored struct {
	URL  string
	Key  string
	Mime string
	Size int64
}

// Upload menyimpan berkas ke store. Gambar raster di-encode ulang ke WebP bila opt != nil;
// selain itu (PDF) diunggah apa adanya.
func Upload(ctx context.Context, store BlobStore, dir, filename string, data []byte, opt *WebPOptions) (Stored, error) {
	key := BuildObjectKey(dir, filename)
	mime := DetectContentType(data, filename)
	body := data

	if opt != nil && IsRasterImage(data, filename) {
		out, err := ConvertToWebP(data, filename, *opt)
		if err != nil {
			return Stored{}, err
		}
		body = out
		key = ReplaceExt(key, ".webp")
		mime = "image/webp"
	}

	url, err := store.Put(ctx, key, bytes.NewReader(body), int64(len(body)), mime)
	if err != nil {
		return Stored{}, err
	}
	return Stored{URL: url, Key: key, Mime: mime, Size: int64(len(body))}, nil
}
