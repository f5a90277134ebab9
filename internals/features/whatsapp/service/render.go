package service

import (
	"regexp"
	"strings"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/whatsapp/model"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Render mengganti {{key}} dari vars. Placeholder yang tidak dikenal dibiarkan apa adanya.
func Render(body string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(body, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := vars[key]; ok {
			return v
		}
		return m
	})
}

// Placeholders: daftar key unik dalam body, urut kemunculan.
func Placeholders(body string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// Sapaan berdasarkan gender & audience.
func Sapaan(audience, gender string) string {
	switch audience {
	case model.AudienceCalonSiswa:
		switch gender {
		case constants.GenderMale:
			return "Saudara"
		case constants.GenderFemale:
			return "Saudari"
		}
	case model.AudiencePanitia, model.AudienceBendahara:
		switch gender {
		case constants.GenderMale:
			return "Ustadz"
		case constants.GenderFemale:
			return "Ustadzah"
		}
	}
	return "Bapak/Ibu"
}

// NormalizePhone: hanya digit, awalan 0 / 8 diubah ke 62. Panjang valid 9..15 digit.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	p := b.String()
	switch {
	case strings.HasPrefix(p, "62"):
	case strings.HasPrefix(p, "0"):
		p = "62" + p[1:]
	case strings.HasPrefix(p, "8"):
		p = "62" + p
	}
	if len(p) < 9 || len(p) > 15 {
		return "", false
	}
	return p, true
}

// Link wa.me dengan teks ter-encode ala encodeURIComponent.
func Link(phone, message string) string {
	return "https://wa.me/" + phone + "?text=" + encodeURIComponent(message)
}

func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// Resolve memilih body template: (code, audience, gender) lalu (code, audience, "")
// lalu body bawaan untuk code tersebut.
func Resolve(templates []model.Template, code, audience, gender string) string {
	var generic string
	for _, t := range templates {
		if !t.IsActive || t.Code != code || t.Audience != audience {
			continue
		}
		if gender != "" && t.Gender == gender {
			return t.Body
		}
		if t.Gender == "" && generic == "" {
			generic = t.Body
		}
	}
	if generic != "" {
		return generic
	}
	return DefaultBodies[code][audience]
}

// EventAudiences: penerima untuk tiap event notifikasi.
var EventAudiences = map[string][]string{
	constants.EventRegistrantRegistered: {model.AudienceCalonSiswa, model.AudiencePanitia},
	constants.EventRegistrantSubmitted:  {model.AudiencePanitia},
	constants.EventRegistrantStatus:     {model.AudienceCalonSiswa},
	constants.EventPaymentSubmitted:     {model.AudienceBendahara},
	constants.EventPaymentVerified:      {model.AudienceCalonSiswa},
	constants.EventPaymentRejected:      {model.AudienceCalonSiswa},
}

var DefaultBodies = map[string]map[string]string{
	constants.EventRegistrantRegistered: {
		model.AudienceCalonSiswa: "Assalamu'alaikum {{sapaan}} {{nama}},\n\nTerima kasih telah mendaftar di {{sekolah}}. Nomor pendaftaran Anda: *{{no_pendaftaran}}*.\nSilakan lengkapi biodata dan unggah berkas melalui dashboard pendaftar.",
		model.AudiencePanitia:    "Assalamu'alaikum {{sapaan}} {{penerima}},\n\nPendaftar baru: *{{nama}}* ({{no_pendaftaran}})\nJalur: {{jalur}}\nJenjang: {{jenjang}}",
	},
	constants.EventRegistrantSubmitted: {
		model.AudiencePanitia: "Assalamu'alaikum {{sapaan}} {{penerima}},\n\n*{{nama}}* ({{no_pendaftaran}}) telah mengirim formulir pendaftaran dan menunggu verifikasi.\nJalur: {{jalur}}, Jenjang: {{jenjang}}",
	},
	constants.EventRegistrantStatus: {
		model.AudienceCalonSiswa: "Assalamu'alaikum {{sapaan}} {{nama}},\n\nStatus pendaftaran Anda ({{no_pendaftaran}}) di {{sekolah}}: *{{status}}*.\n{{catatan}}",
	},
	constants.EventPaymentSubmitted: {
		model.AudienceBendahara: "Assalamu'alaikum {{sapaan}} {{penerima}},\n\nPembayaran *{{biaya}}* sebesar {{nominal}} dari {{nama}} ({{no_pendaftaran}}) menunggu verifikasi.\n{{catatan}}",
	},
	constants.EventPaymentVerified: {
		model.AudienceCalonSiswa: "Assalamu'alaikum {{sapaan}} {{nama}},\n\nPembayaran *{{biaya}}* sebesar {{nominal}} telah kami terima. Jazakumullahu khairan.",
	},
	constants.EventPaymentRejected: {
		model.AudienceCalonSiswa: "Assalamu'alaikum {{sapaan}} {{nama}},\n\nPembayaran *{{biaya}}* sebesar {{nominal}} belum dapat kami terima.\nCatatan: {{catatan}}\nSilakan unggah ulang bukti pembayaran melalui dashboard.",
	},
}
