package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

/* =======================================================================
   Konversi gambar → WebP
======================================================================= */

var ErrUnsupportedImage = fmt.Errorf("format tidak didukung (pakai jpg/png/webp)")

type WebPOptions struct {
	MaxW    int     // batas lebar (resize keep-aspect)
	MaxH    int     // batas tinggi
	Quality float32 // 0 = 80
	// Crop3x4 memotong tengah ke rasio 3:4 (pas foto) sebelum encode.
	Crop3x4 bool
}

var (
	DocumentWebP = WebPOptions{MaxW: 1600, MaxH: 1600, Quality: 80}
	PasFotoWebP  = WebPOptions{MaxW: 600, MaxH: 800, Quality: 85, Crop3x4: true}
)

// IsRasterImage: jpg/png/webp (yang bisa di-encode ulang).
func IsRasterImage(data []byte, filename string) bool {
	ct := sniff(data)
	if strings.HasPrefix(ct, "image/jpeg") || strings.HasPrefix(ct, "image/png") || strings.HasPrefix(ct, "image/webp") {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

// DetectContentType: sniff 512 byte lalu fallback ke ekstensi.
func DetectContentType(data []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	}
	return sniff(data)
}

func sniff(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return http.DetectContentType(head)
}

func decodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	ct := sniff(all)
	r := bytes.NewReader(all)
	switch {
	case strings.Contains(ct, "jpeg"):
		return jpeg.Decode(r)
	case strings.Contains(ct, "png"):
		return png.Decode(r)
	case strings.Contains(ct, "webp"):
		return webp.Decode(r)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".png":
		return png.Decode(r)
	case ".webp":
		return webp.Decode(r)
	}
	return nil, ErrUnsupportedImage
}

// downscaleIfNeeded: keep aspect, CatmullRom.
func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (maxW <= 0 || w <= maxW) && (maxH <= 0 || h <= maxH) {
		return src
	}
	scale := 1.0
	if maxW > 0 {
		scale = math.Min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 {
		scale = math.Min(scale, float64(maxH)/float64(h))
	}
	nw := max(int(math.Round(float64(w)*scale)), 1)
	nh := max(int(math.Round(float64(h)*scale)), 1)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// crop3x4 memotong bagian tengah ke rasio 3:4 (lebar:tinggi).
func crop3x4(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	tw, th := w, w*4/3
	if th > h {
		th = h
		tw = h * 3 / 4
	}
	if tw < 1 || th < 1 {
		return src
	}
	return imaging.Fill(src, tw, th, imaging.Center, imaging.Lanczos)
}

// ConvertToWebP: decode → (crop) → downscale → encode webp.
func ConvertToWebP(data []byte, filename string, opt WebPOptions) ([]byte, error) {
	img, err := decodeImage(data, filename)
	if err != nil {
		return nil, err
	}
	if opt.Crop3x4 {
		img = crop3x4(img)
	}
	img = downscaleIfNeeded(img, opt.MaxW, opt.MaxH)

	q := opt.Quality
	if q <= 0 {
		q = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
