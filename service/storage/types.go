package storage

import (
	"context"
	"time"
)

// Service defines persistence and history query operations.
type Service interface {
	SaveScan(ctx context.Context, input SaveScanInput) (int64, error)
	GetRecentScans(accountID string, limit int) ([]ScanSummary, error)
	ListFindings(scanID int64) ([]FindingSnapshot, error)
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
	Vacuum(ctx context.Context) error
	Close() error
}

// SaveScanInput is the payload saved for a completed audit run.
type SaveScanInput struct {
	ScanUUID    string
	AccountID   string
	Region      string
	DurationSec int64
	Version     string
	Profile     string
	Findings    []Finding
}

// Finding is a normalized finding used for storage and lifecycle tracking.
type Finding struct {
	Check          string
	Service        string
	Severity       string
	Region         string
	ResourceID     string
	ResourceARN    string
	Description    string
	Recommendation string
}

// ScanSummary provides compact scan metadata.
type ScanSummary struct {
	ScanID        int64
	ScanUUID      string
	AccountID     string
	Region        string
	ScanTimestamp time.Time
	TotalFindings int
	CriticalCount int
	HighCount     int
	MediumCount   int
	LowCount      int
	Version       string
}

// FindingSnapshot is a scan-time finding view.
type FindingSnapshot struct {
	FindingHash string
	Check       string
	Service     string
	Severity    string
	Region      string
	ResourceID  string
	Status      string
}
