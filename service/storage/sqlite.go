// Package storage persists audit runs and tracks finding lifecycle in SQLite.
package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const defaultDBPath = "~/.aws-auditor/history.db"

// NewService creates a SQLite-backed storage service.
func NewService(dbPath string) (Service, error) {
	resolved, err := resolvePath(dbPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &service{db: db, dbPath: resolved}, nil
}

type service struct {
	db     *sql.DB
	dbPath string
}

func resolvePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		p = defaultDBPath
	}
	if strings.HasPrefix(p, "~/") || p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home dir: %w", err)
		}
		if p == "~" {
			p = home
		} else {
			p = filepath.Join(home, p[2:])
		}
	}
	return filepath.Clean(p), nil
}

// FindingHash identifies a finding across scans: same check failing on the
// same resource in the same region is the same finding.
func FindingHash(f Finding) string {
	sum := sha256.Sum256([]byte(f.Check + "|" + f.Region + "|" + f.ResourceARN + "|" + f.ResourceID))
	return hex.EncodeToString(sum[:])
}

func (s *service) SaveScan(ctx context.Context, input SaveScanInput) (int64, error) {
	if input.AccountID == "" {
		return 0, errors.New("account id is required")
	}
	if input.Region == "" {
		input.Region = "unknown"
	}
	if input.ScanUUID == "" {
		input.ScanUUID = uuid.NewString()
	}

	var critical, high, medium, low int
	for _, f := range input.Findings {
		switch f.Severity {
		case "CRITICAL":
			critical++
		case "HIGH":
			high++
		case "MEDIUM":
			medium++
		case "LOW":
			low++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO scans (
			scan_uuid, account_id, region, scan_duration, total_findings,
			critical_count, high_count, medium_count, low_count,
			cli_version, scan_profile
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, input.ScanUUID, input.AccountID, input.Region, input.DurationSec, len(input.Findings),
		critical, high, medium, low, input.Version, input.Profile)
	if err != nil {
		return 0, err
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err = s.saveFindingsTx(ctx, tx, scanID, input); err != nil {
		return 0, err
	}

	err = tx.Commit()
	if err != nil {
		return 0, err
	}
	return scanID, nil
}

func (s *service) saveFindingsTx(ctx context.Context, tx *sql.Tx, scanID int64, input SaveScanInput) error {
	seen := make([]string, 0, len(input.Findings))
	now := time.Now().UTC().Format(time.RFC3339)

	for _, f := range input.Findings {
		hash := FindingHash(f)
		seen = append(seen, hash)

		_, err := tx.ExecContext(ctx, `
			INSERT INTO findings (
				account_id, finding_hash, check_name, service, severity, region,
				resource_id, resource_arn, description, recommendation,
				first_seen, last_seen, status
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'OPEN')
			ON CONFLICT(account_id, finding_hash) DO UPDATE SET
				check_name=excluded.check_name,
				service=excluded.service,
				severity=excluded.severity,
				region=excluded.region,
				resource_id=excluded.resource_id,
				resource_arn=excluded.resource_arn,
				description=excluded.description,
				recommendation=excluded.recommendation,
				last_seen=excluded.last_seen,
				resolved_at=NULL,
				status='OPEN'
		`, input.AccountID, hash, f.Check, f.Service, f.Severity, f.Region,
			f.ResourceID, f.ResourceARN, f.Description, f.Recommendation, now, now)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO scan_findings(scan_id, finding_hash, check_name, service, severity, status, region, resource_id)
			VALUES (?, ?, ?, ?, ?, 'OPEN', ?, ?)
		`, scanID, hash, f.Check, f.Service, f.Severity, f.Region, f.ResourceID)
		if err != nil {
			return err
		}
	}

	// Findings open in earlier scans but absent from this one are resolved.
	query := `
		UPDATE findings SET status='RESOLVED', resolved_at=?, last_seen=?
		WHERE account_id=? AND status='OPEN'
	`
	args := []any{now, now, input.AccountID}
	if len(seen) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seen)), ",")
		query += fmt.Sprintf(" AND finding_hash NOT IN (%s)", placeholders)
		for _, h := range seen {
			args = append(args, h)
		}
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO scan_findings(scan_id, finding_hash, check_name, service, severity, status, region, resource_id)
		SELECT ?, finding_hash, check_name, service, severity, status, region, resource_id
		FROM findings WHERE account_id=? AND status='RESOLVED' AND resolved_at=?
	`, scanID, input.AccountID, now)
	return err
}

func (s *service) GetRecentScans(accountID string, limit int) ([]ScanSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT scan_id, scan_uuid, account_id, region, scan_timestamp,
			total_findings, critical_count, high_count, medium_count, low_count, cli_version
		FROM scans
	`
	args := []any{}
	if accountID != "" {
		query += " WHERE account_id=?"
		args = append(args, accountID)
	}
	query += " ORDER BY scan_timestamp DESC LIMIT ?"
	args = append(args, limit)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := []ScanSummary{}
	for rows.Next() {
		var ssum ScanSummary
		if err := rows.Scan(&ssum.ScanID, &ssum.ScanUUID, &ssum.AccountID, &ssum.Region, &ssum.ScanTimestamp,
			&ssum.TotalFindings, &ssum.CriticalCount, &ssum.HighCount, &ssum.MediumCount, &ssum.LowCount,
			&ssum.Version); err != nil {
			return nil, err
		}
		scans = append(scans, ssum)
	}
	return scans, rows.Err()
}

func (s *service) ListFindings(scanID int64) ([]FindingSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT finding_hash, check_name, service, severity, status, region, resource_id
		FROM scan_findings WHERE scan_id=? ORDER BY severity DESC, check_name ASC
	`, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []FindingSnapshot{}
	for rows.Next() {
		var f FindingSnapshot
		if err := rows.Scan(&f.FindingHash, &f.Check, &f.Service, &f.Severity, &f.Status, &f.Region, &f.ResourceID); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *service) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, errors.New("days must be > 0")
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM scans WHERE scan_timestamp < DATETIME('now', ?)
	`, fmt.Sprintf("-%d day", days))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *service) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

func (s *service) Close() error {
	return s.db.Close()
}
