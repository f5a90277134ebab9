package constants

import (
	"path/filepath"
	"strings"
)

// Jenis dokumen calon siswa
const (
	DocPasFoto       = "pas_foto"
	DocAktaKelahiran = "akta_kelahiran"
	DocKartuKeluarga = "kartu_keluarga"
	DocIjazah        = "ijazah"
	DocRapor         = "rapor"
	DocKIP           = "kip"
	DocSKTM          = "sktm"
	DocLainnya       = "lainnya"
)

var DocumentKinds = []string{
	DocPasFoto, DocAktaKelahiran, DocKartuKeluarga, DocIjazah,
	DocRapor, DocKIP, DocSKTM, DocLainnya,
}

// DefaultRequiredDocuments dipakai bila jenjang tidak mendefinisikan dokumen wajib.
var DefaultRequiredDocuments = []string{DocPasFoto, DocAktaKelahiran, DocKartuKeluarga}

const (
	FileTypeImage   = "image"
	FileTypePDF     = "pdf"
	FileTypeUnknown = "unknown"
)

func DetectFileTypeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileTypeImage
	case ".pdf":
		return FileTypePDF
	default:
		return FileTypeUnknown
	}
}

func IsValidDocumentKind(kind string) bool {
	for _, k := range DocumentKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// AllowedFileForKind: pas_foto hanya gambar, selain itu gambar atau PDF.
func AllowedFileForKind(kind, filename string) bool {
	t := DetectFileTypeFromExt(filename)
	if kind == DocPasFoto {
		return t == FileTypeImage
	}
	return t == FileTypeImage || t == FileTypePDF
}
