package constants

// Status pendaftar
const (
	RegistrantDraft     = "draft"
	RegistrantSubmitted = "submitted"
	RegistrantVerified  = "verified"
	RegistrantAccepted  = "accepted"
	RegistrantRejected  = "rejected"
)

var RegistrantStatuses = []string{
	RegistrantDraft, RegistrantSubmitted, RegistrantVerified, RegistrantAccepted, RegistrantRejected,
}

// Label status untuk pesan WhatsApp & export
var RegistrantStatusLabel = map[string]string{
	RegistrantDraft:     "Draft",
	RegistrantSubmitted: "Menunggu Verifikasi",
	RegistrantVerified:  "Terverifikasi",
	RegistrantAccepted:  "Diterima",
	RegistrantRejected:  "Tidak Diterima",
}

// Status verifikasi (pembayaran & berkas)
const (
	ReviewPending  = "pending"
	ReviewAccepted = "diterima"
	ReviewRejected = "ditolak"
)

// Metode pembayaran
const (
	PaymentTransfer = "transfer"
	PaymentCash     = "cash"
	PaymentGateway  = "gateway"
)

// Target pengumuman
const (
	TargetAdmin      = RoleAdmin
	TargetPanitia    = RolePanitia
	TargetCalonSiswa = RoleCalonSiswa
	TargetAll        = "all"
)

var AnnouncementTargets = []string{TargetAdmin, TargetPanitia, TargetCalonSiswa, TargetAll}

// Event notifikasi WhatsApp
const (
	EventRegistrantRegistered = "registrant_registered"
	EventRegistrantSubmitted  = "registrant_submitted"
	EventRegistrantStatus     = "registrant_status"
	EventPaymentSubmitted     = "payment_submitted"
	EventPaymentVerified      = "payment_verified"
	EventPaymentRejected      = "payment_rejected"
	EventBroadcast            = "broadcast"
)

func Contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
