package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/qrtrack/go-qr-tracker/pkg/core/domain"
)

var testDBCounter int

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	testDBCounter++
	dbURL := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", testDBCounter)
	repo, err := NewSQLiteRepository(dbURL)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	return repo
}

func newLink(code string) *domain.Link {
	return &domain.Link{
		ShortCode:   code,
		Destination: "https://example.com",
		QRImage:     "data:image/png;base64,ZmFrZQ==",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestCreateMapsUniqueViolationToCodeTaken(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := newLink("abc12345")
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if first.ID == 0 {
		t.Error("expected assigned id")
	}

	err := repo.Create(ctx, newLink("abc12345"))
	if !domain.IsConflict(err) {
		t.Fatalf("expected ErrCodeTaken on duplicate code, got %v", err)
	}
}

func TestGetByShortCodeAndID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	link := newLink("abc12345")
	if err := repo.Create(ctx, link); err != nil {
		t.Fatal(err)
	}

	byCode, err := repo.GetByShortCode(ctx, "abc12345")
	if err != nil {
		t.Fatalf("GetByShortCode failed: %v", err)
	}
	if byCode.Destination != "https://example.com" || byCode.QRImage == "" {
		t.Errorf("unexpected link: %+v", byCode)
	}
	if byCode.ScanCount != 0 {
		t.Errorf("expected derived scan count 0, got %d", byCode.ScanCount)
	}

	byID, err := repo.GetByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.ShortCode != "abc12345" {
		t.Errorf("unexpected code %q", byID.ShortCode)
	}

	// Lookups are case-sensitive exact matches.
	if _, err := repo.GetByShortCode(ctx, "ABC12345"); !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound for case-mismatched code, got %v", err)
	}
	if _, err := repo.GetByID(ctx, 404); !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestScanLedgerAppendAndDerivedCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	link := newLink("abc12345")
	if err := repo.Create(ctx, link); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	// Insert out of timestamp order; reads must order by timestamp.
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		scan := domain.Scan{
			Timestamp:     base.Add(offset),
			UserAgent:     "agent",
			SourceAddress: "203.0.113.7",
		}
		if err := repo.RecordScan(ctx, link.ID, scan); err != nil {
			t.Fatalf("RecordScan failed: %v", err)
		}
	}

	scans, err := repo.GetScans(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetScans failed: %v", err)
	}
	if len(scans) != 3 {
		t.Fatalf("expected 3 scans, got %d", len(scans))
	}
	for i := 1; i < len(scans); i++ {
		if scans[i].Timestamp.Before(scans[i-1].Timestamp) {
			t.Errorf("ledger not ordered by timestamp: %v", scans)
		}
	}

	got, err := repo.GetByShortCode(ctx, "abc12345")
	if err != nil {
		t.Fatal(err)
	}
	if got.ScanCount != 3 {
		t.Errorf("expected derived scan count 3, got %d", got.ScanCount)
	}
}

func TestListNewestFirstWithoutImages(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		link := newLink(fmt.Sprintf("code000%d", i))
		link.CreatedAt = created.Add(time.Duration(i) * time.Hour)
		if err := repo.Create(ctx, link); err != nil {
			t.Fatal(err)
		}
	}

	links, err := repo.List(ctx, 3, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	if links[0].ShortCode != "code0004" {
		t.Errorf("expected newest first, got %q", links[0].ShortCode)
	}
	for _, l := range links {
		if l.QRImage != "" {
			t.Errorf("summary for %s carries the rendered image", l.ShortCode)
		}
	}

	total, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}

	// Offset past the end yields an empty page.
	empty, err := repo.List(ctx, 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty page, got %d", len(empty))
	}
}

func TestDumpIncludesImages(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newLink("abc12345")); err != nil {
		t.Fatal(err)
	}

	links, err := repo.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if len(links) != 1 || links[0].QRImage == "" {
		t.Errorf("expected full records in dump, got %+v", links)
	}
}
