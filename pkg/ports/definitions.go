package ports

import (
	"context"

	"github.com/qrtrack/go-qr-tracker/pkg/core/domain"
)

// LinkRepository defines storage operations for links and their scan ledgers.
type LinkRepository interface {
	// Create inserts a new link. Must fail with domain.ErrCodeTaken when the
	// short code collides with an existing row; the uniqueness guarantee
	// lives in the storage constraint, not in an application pre-check.
	Create(ctx context.Context, link *domain.Link) error
	GetByShortCode(ctx context.Context, code string) (*domain.Link, error)
	GetByID(ctx context.Context, id int64) (*domain.Link, error)
	// List returns links newest-first without their rendered images.
	List(ctx context.Context, limit, offset int) ([]domain.Link, error)
	Count(ctx context.Context) (int64, error)
	Dump(ctx context.Context) ([]domain.Link, error) // for export tooling

	// RecordScan appends one scan to a link's ledger. Entries are never
	// reordered or mutated after append.
	RecordScan(ctx context.Context, linkID int64, scan domain.Scan) error
	// GetScans returns a link's full ledger ordered by timestamp ascending.
	GetScans(ctx context.Context, linkID int64) ([]domain.Scan, error)
}

// LinkCache is an optional read-through cache for the redirect path.
// A miss is (nil, nil); errors degrade to a repository read.
type LinkCache interface {
	Get(ctx context.Context, code string) (*domain.Link, error)
	Set(ctx context.Context, link *domain.Link) error
}

// QREncoder renders a text payload as an image. Format is "png" (base64
// data-URI) or "svg" (markup).
type QREncoder interface {
	Encode(text, format string) (string, error)
}

// LinkService defines the business logic operations.
type LinkService interface {
	// Create allocates a unique short code, renders the QR image once and
	// persists the link with an empty scan ledger.
	Create(ctx context.Context, destination, format string) (*domain.Link, error)
	// Scan resolves a short code, appends a scan to its ledger and returns
	// the destination to redirect to.
	Scan(ctx context.Context, code string, scan domain.Scan) (string, error)
	// Analytics aggregates a link's ledger into timeline, recent scans and
	// summary statistics.
	Analytics(ctx context.Context, id int64) (*domain.LinkAnalytics, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Link, int64, error)
	// ShortURL returns the public redirect URL for a code.
	ShortURL(code string) string
}
