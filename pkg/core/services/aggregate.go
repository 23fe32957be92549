package services

import (
	"sort"

	"github.com/qrtrack/go-qr-tracker/pkg/core/domain"
)

// recentScanLimit caps the recent-scans view.
const recentScanLimit = 10

// Aggregation is pure: these functions read a ledger and derive views without
// touching storage. Both sort by timestamp so the result is deterministic
// regardless of the order concurrent appends landed in.

// Timeline buckets scans by UTC calendar date, ascending. Days without scans
// do not appear.
func Timeline(scans []domain.Scan) []domain.DailyScans {
	byDate := make(map[string]int64)
	for _, scan := range scans {
		date := scan.Timestamp.UTC().Format("2006-01-02")
		byDate[date]++
	}

	timeline := make([]domain.DailyScans, 0, len(byDate))
	for date, count := range byDate {
		timeline = append(timeline, domain.DailyScans{Date: date, Count: count})
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Date < timeline[j].Date })
	return timeline
}

// Recent returns at most n scans, most recent first.
func Recent(scans []domain.Scan, n int) []domain.Scan {
	recent := make([]domain.Scan, len(scans))
	copy(recent, scans)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

// AveragePerDay is total/days, with a defined zero when no day has scans.
func AveragePerDay(total int64, days int) float64 {
	if days == 0 {
		return 0
	}
	return float64(total) / float64(days)
}
