package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/qrtrack/go-qr-tracker/pkg/core/domain"
	"github.com/qrtrack/go-qr-tracker/pkg/ports"
)

const (
	codeLength      = 8
	allocateRetries = 10
	defaultPageSize = 10
)

type LinkService struct {
	repo    ports.LinkRepository
	encoder ports.QREncoder
	cache   ports.LinkCache // may be nil
	baseURL string
	nowFunc func() time.Time
}

func NewLinkService(repo ports.LinkRepository, encoder ports.QREncoder, cache ports.LinkCache, baseURL string) *LinkService {
	return &LinkService{
		repo:    repo,
		encoder: encoder,
		cache:   cache,
		baseURL: strings.TrimRight(baseURL, "/"),
		nowFunc: time.Now,
	}
}

// ShortURL returns the public redirect URL encoded into the QR image.
func (s *LinkService) ShortURL(code string) string {
	return s.baseURL + "/s/" + code
}

// Create validates the destination, allocates a unique short code and
// persists the link together with its QR image rendered exactly once.
//
// There is no existence pre-check: the short_code uniqueness constraint in
// storage is the arbiter, and a constraint violation triggers regeneration.
func (s *LinkService) Create(ctx context.Context, destination, format string) (*domain.Link, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, domain.ErrEmptyDestination
	}
	if err := validateDestination(destination); err != nil {
		return nil, err
	}

	switch format {
	case "":
		format = "png"
	case "png", "svg":
	default:
		return nil, domain.ErrInvalidFormat
	}

	for i := 0; i < allocateRetries; i++ {
		code, err := generateShortCode(codeLength)
		if err != nil {
			return nil, err
		}

		image, err := s.encoder.Encode(s.ShortURL(code), format)
		if err != nil {
			return nil, err
		}

		link := &domain.Link{
			ShortCode:   code,
			Destination: destination,
			QRImage:     image,
			CreatedAt:   s.nowFunc().UTC(),
		}
		err = s.repo.Create(ctx, link)
		if err == nil {
			return link, nil
		}
		if !domain.IsConflict(err) {
			return nil, err
		}
	}
	return nil, domain.ErrCodeExhausted
}

// Scan resolves a short code, appends one scan to its ledger and returns the
// destination. The append is synchronous: once the caller redirects, the
// analytics view already includes the scan.
func (s *LinkService) Scan(ctx context.Context, code string, scan domain.Scan) (string, error) {
	link, err := s.resolve(ctx, code)
	if err != nil {
		return "", err
	}
	if scan.Timestamp.IsZero() {
		scan.Timestamp = s.nowFunc().UTC()
	}
	if err := s.repo.RecordScan(ctx, link.ID, scan); err != nil {
		return "", err
	}
	return link.Destination, nil
}

// resolve looks a link up by code, going through the cache when one is
// configured. Links are immutable after creation, so a cached entry can never
// be stale; cache failures degrade silently to a repository read.
func (s *LinkService) resolve(ctx context.Context, code string) (*domain.Link, error) {
	if s.cache != nil {
		if link, err := s.cache.Get(ctx, code); err == nil && link != nil {
			return link, nil
		}
	}
	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, link)
	}
	return link, nil
}

// Analytics aggregates the link's scan ledger into read-time views. The scan
// count is derived from the ledger itself, never from a stored counter.
func (s *LinkService) Analytics(ctx context.Context, id int64) (*domain.LinkAnalytics, error) {
	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	scans, err := s.repo.GetScans(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	timeline := Timeline(scans)
	out := &domain.LinkAnalytics{
		Link:           *link,
		ShortURL:       s.ShortURL(link.ShortCode),
		UniqueDayCount: len(timeline),
		AveragePerDay:  AveragePerDay(int64(len(scans)), len(timeline)),
		Timeline:       timeline,
		RecentScans:    Recent(scans, recentScanLimit),
	}
	out.ScanCount = int64(len(scans))
	return out, nil
}

// List returns link summaries newest-first. Page numbers below 1 clamp to 1.
func (s *LinkService) List(ctx context.Context, page, pageSize int) ([]domain.Link, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	offset := (page - 1) * pageSize

	links, err := s.repo.List(ctx, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// validateDestination only applies URL syntax rules when the input claims to
// be one; plain text payloads are stored opaquely.
func validateDestination(destination string) error {
	if !strings.HasPrefix(destination, "http://") && !strings.HasPrefix(destination, "https://") {
		return nil
	}
	parsed, err := url.Parse(destination)
	if err != nil || parsed.Host == "" {
		return domain.ErrInvalidURL
	}
	return nil
}

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateShortCode(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}

var _ ports.LinkService = (*LinkService)(nil)
