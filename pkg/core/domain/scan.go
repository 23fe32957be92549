package domain

import "time"

// Scan is one recorded redirect against a link. Client metadata is
// best-effort; empty strings mean the header was absent.
type Scan struct {
	Timestamp     time.Time `json:"timestamp"`
	UserAgent     string    `json:"user_agent,omitempty"`
	SourceAddress string    `json:"source_address,omitempty"`
}

// DailyScans is one timeline bucket: a UTC calendar date with at least one scan.
type DailyScans struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// LinkAnalytics is the read-time view of a link's scan ledger.
type LinkAnalytics struct {
	Link
	ShortURL       string       `json:"short_url"`
	UniqueDayCount int          `json:"unique_day_count"`
	AveragePerDay  float64      `json:"average_per_day"`
	Timeline       []DailyScans `json:"timeline"`
	RecentScans    []Scan       `json:"recent_scans"`
}
