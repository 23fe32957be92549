package domain

import "time"

// Link binds a short code to a destination and its rendered QR image.
// A link is immutable after creation; only its scan ledger grows.
type Link struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	Destination string    `json:"destination"`
	QRImage     string    `json:"qr_image,omitempty"` // png data-URI or svg markup; empty in list summaries
	ScanCount   int64     `json:"scan_count"`         // derived from the scan ledger at read time
	CreatedAt   time.Time `json:"created_at"`
}
