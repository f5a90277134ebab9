package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestConvertToWebPCropsPasFoto(t *testing.T) {
	out, err := ConvertToWebP(pngBytes(t, 400, 400), "foto.png", PasFotoWebP)
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestConvertToWebPDownscales(t *testing.T) {
	out, err := ConvertToWebP(pngBytes(t, 320, 160), "scan.png", WebPOptions{MaxW: 160, MaxH: 160})
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 160, cfg.Width)
	assert.Equal(t, 80, cfg.Height)
}

func TestConvertRejectsNonImage(t *testing.T) {
	_, err := ConvertToWebP([]byte("%PDF-1.4 hello"), "ijazah.pdf", DocumentWebP)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.False(t, IsRasterImage([]byte("%PDF-1.4 hello"), "ijazah.pdf"))
	assert.Equal(t, "application/pdf", DetectContentType([]byte("%PDF-1.4"), "ijazah.pdf"))
}

func TestBuildObjectKey(t *testing.T) {
	key := BuildObjectKey("registrants/abc/pas_foto", "Foto Saya.JPG")
	assert.True(t, strings.HasPrefix(key, "registrants/abc/pas_foto/foto-saya_"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.Equal(t, "a/b.webp", ReplaceExt("a/b.jpg", ".webp"))

	key = BuildObjectKey("../..//x", "???")
	assert.True(t, strings.HasPrefix(key, "x/file_"), key)
}

func TestSupabaseStore(t *testing.T) {
	var (
		mu      sync.Mutex
		gotPath string
		gotAuth string
		gotBody string
		deleted string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	st, err := NewSupabaseStore(srv.URL+"/", "svc-key", "ppdb", srv.Client())
	require.NoError(t, err)

	url, err := st.Put(context.Background(), "registrants/1/kk.pdf", strings.NewReader("data"), 4, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/ppdb/registrants/1/kk.pdf", url)
	assert.Equal(t, "/storage/v1/object/ppdb/registrants/1/kk.pdf", gotPath)
	assert.Equal(t, "Bearer svc-key", gotAuth)
	assert.Equal(t, "data", gotBody)

	require.NoError(t, st.Delete(context.Background(), "registrants/1/kk.pdf"))
	assert.Equal(t, "/storage/v1/object/ppdb/registrants/1/kk.pdf", deleted)

	bucket, key, err := ExtractSupabasePath(url)
	require.NoError(t, err)
	assert.Equal(t, "ppdb", bucket)
	assert.Equal(t, "registrants/1/kk.pdf", key)
}

func TestSupabaseStoreUploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusForbidden)
	}))
	defer srv.Close()

	st, err := NewSupabaseStore(srv.URL, "k", "", srv.Client())
	require.NoError(t, err)
	_, err = st.Put(context.Background(), "a.pdf", strings.NewReader("x"), 1, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	_, err = NewSupabaseStore("", "", "", nil)
	assert.Error(t, err)
}

func TestOSSPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test/a/b.webp", ossPublicURL("https://cdn.test", "", "", "a/b.webp"))
	assert.Equal(t, "https://bkt.oss-ap-southeast-5.aliyuncs.com/k", ossPublicURL("", "https://oss-ap-southeast-5.aliyuncs.com", "bkt", "k"))
	assert.Equal(t, "", ossPublicURL("x", "y", "z", ""))
}

func TestB2Store(t *testing.T) {
	assert.Equal(t, "https://f005.backblazeb2.com/file/ppdb/a/b.webp", b2PublicURL("https://f005.backblazeb2.com/file/ppdb", "/a/b.webp"))
	assert.Equal(t, "", b2PublicURL("https://cdn.test", ""))

	_, err := NewB2Store(context.Background(), B2Config{Bucket: "ppdb"})
	assert.ErrorContains(t, err, "B2_ACCOUNT_ID")
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore("mem://bucket/")
	url, err := m.Put(context.Background(), "k1", strings.NewReader("v"), 1, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "mem://bucket/k1", url)
	assert.True(t, m.Has("k1"))
	require.NoError(t, m.Delete(context.Background(), "k1"))
	assert.False(t, m.Has("k1"))
}

func TestUploadConvertsRaster(t *testing.T) {
	mem := NewMemoryStore("http://cdn.test")
	st, err := Upload(context.Background(), mem, "registrants/abc/pas_foto", "Foto Saya.PNG", pngBytes(t, 90, 90), &PasFotoWebP)
	require.NoError(t, err)

	assert.Equal(t, "image/webp", st.Mime)
	assert.True(t, strings.HasSuffix(st.Key, ".webp"))
	assert.True(t, strings.HasPrefix(st.Key, "registrants/abc/pas_foto/foto-saya_"))
	assert.True(t, mem.Has(st.Key))
	assert.Equal(t, "http://cdn.test/"+st.Key, st.URL)
}

func TestUploadKeepsPDF(t *testing.T) {
	mem := NewMemoryStore("http://cdn.test")
	pdf := []byte("%PDF-1.4\n%...")
	st, err := Upload(context.Background(), mem, "proofs", "bukti.pdf", pdf, &DocumentWebP)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", st.Mime)
	assert.Equal(t, int64(len(pdf)), st.Size)
	assert.True(t, strings.HasSuffix(st.Key, ".pdf"))
}
