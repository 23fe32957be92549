package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/qrtrack/go-qr-tracker/pkg/core/domain"
	"github.com/qrtrack/go-qr-tracker/pkg/ports"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if driverName == "sqlite" {
		// Best-effort pragmas for local files; concurrent scan appends
		// otherwise trip SQLITE_BUSY under load.
		_, _ = db.Exec("PRAGMA busy_timeout = 5000;")
		_, _ = db.Exec("PRAGMA journal_mode = WAL;")
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	// short_code UNIQUE is the uniqueness arbiter for code allocation.
	// scan_count is intentionally not a column: it is derived from the scans
	// table on every read so the counter can never diverge from the ledger.
	query := `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		short_code TEXT NOT NULL UNIQUE,
		destination TEXT NOT NULL,
		qr_image TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_links_short_code ON links(short_code);

	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		link_id INTEGER NOT NULL,
		user_agent TEXT,
		source_address TEXT,
		scanned_at DATETIME NOT NULL,
		FOREIGN KEY(link_id) REFERENCES links(id)
	);
	CREATE INDEX IF NOT EXISTS idx_scans_link_id ON scans(link_id);
	`
	_, err := db.Exec(query)
	return err
}

func (r *SQLiteRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (short_code, destination, qr_image, created_at) VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, link.ShortCode, link.Destination, link.QRImage, link.CreatedAt.UTC())
	if err != nil {
		// Driver-specific error codes vary between the local and remote
		// drivers, so unique violations are detected by message.
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return domain.ErrCodeTaken
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

const linkColumns = `l.id, l.short_code, l.destination, l.qr_image, l.created_at,
		(SELECT COUNT(*) FROM scans s WHERE s.link_id = l.id)`

func (r *SQLiteRepository) GetByShortCode(ctx context.Context, code string) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links l WHERE l.short_code = ?`
	return r.scanLink(r.db.QueryRowContext(ctx, query, code))
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links l WHERE l.id = ?`
	return r.scanLink(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) scanLink(row *sql.Row) (*domain.Link, error) {
	var link domain.Link
	err := row.Scan(&link.ID, &link.ShortCode, &link.Destination, &link.QRImage, &link.CreatedAt, &link.ScanCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	link.CreatedAt = link.CreatedAt.UTC()
	return &link, nil
}

// List returns summaries newest-first; qr_image is deliberately not selected.
func (r *SQLiteRepository) List(ctx context.Context, limit, offset int) ([]domain.Link, error) {
	query := `SELECT l.id, l.short_code, l.destination, l.created_at,
		(SELECT COUNT(*) FROM scans s WHERE s.link_id = l.id)
		FROM links l
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.ID, &l.ShortCode, &l.Destination, &l.CreatedAt, &l.ScanCount); err != nil {
			return nil, err
		}
		l.CreatedAt = l.CreatedAt.UTC()
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links l ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.ID, &l.ShortCode, &l.Destination, &l.QRImage, &l.CreatedAt, &l.ScanCount); err != nil {
			return nil, err
		}
		l.CreatedAt = l.CreatedAt.UTC()
		links = append(links, l)
	}
	return links, rows.Err()
}

// RecordScan appends one ledger entry. A single INSERT either lands fully or
// not at all, so a cancelled call leaves no half-written scan.
func (r *SQLiteRepository) RecordScan(ctx context.Context, linkID int64, scan domain.Scan) error {
	query := `INSERT INTO scans (link_id, user_agent, source_address, scanned_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, linkID, scan.UserAgent, scan.SourceAddress, scan.Timestamp.UTC())
	return err
}

// GetScans returns the ledger ordered by timestamp, not arrival, so derived
// views stay deterministic under concurrent appends.
func (r *SQLiteRepository) GetScans(ctx context.Context, linkID int64) ([]domain.Scan, error) {
	query := `SELECT user_agent, source_address, scanned_at FROM scans
		WHERE link_id = ? ORDER BY scanned_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []domain.Scan
	for rows.Next() {
		var s domain.Scan
		if err := rows.Scan(&s.UserAgent, &s.SourceAddress, &s.Timestamp); err != nil {
			return nil, err
		}
		s.Timestamp = s.Timestamp.UTC()
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

// Ensure interface compliance
var _ ports.LinkRepository = (*SQLiteRepository)(nil)
