// Package backupaudit collects AWS Backup inventory across regions.
package backupaudit

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	"github.com/thirukguru/aws-auditor/service/regional"
	"github.com/thirukguru/aws-auditor/service/scanfilter"
)

// API is the AWS Backup surface the collector needs. The SDK paginators
// accept it, and tests substitute a fake.
type API interface {
	ListBackupVaults(ctx context.Context, params *backup.ListBackupVaultsInput, optFns ...func(*backup.Options)) (*backup.ListBackupVaultsOutput, error)
	ListBackupPlans(ctx context.Context, params *backup.ListBackupPlansInput, optFns ...func(*backup.Options)) (*backup.ListBackupPlansOutput, error)
	ListReportPlans(ctx context.Context, params *backup.ListReportPlansInput, optFns ...func(*backup.Options)) (*backup.ListReportPlansOutput, error)
}

// Vault is one Backup vault. Immutable once appended.
type Vault struct {
	ARN              string
	Name             string
	Region           string
	EncryptionKeyARN string
	RecoveryPoints   int64
	Locked           bool
	MinRetentionDays int64
	MaxRetentionDays int64
}

// Plan is one Backup plan.
type Plan struct {
	ARN               string
	ID                string
	Name              string
	Region            string
	VersionID         string
	LastExecutionDate time.Time
}

// ReportPlan is one Backup report plan.
type ReportPlan struct {
	ARN                         string
	Name                        string
	Region                      string
	LastAttemptedExecutionTime  time.Time
	LastSuccessfulExecutionTime time.Time
}

// Collector gathers Backup vaults, plans, and report plans, one concurrent
// worker per region per listing operation.
type Collector struct {
	clients map[string]regional.Client[API]
	filter  []string

	mu          sync.Mutex
	Vaults      []Vault
	Plans       []Plan
	ReportPlans []ReportPlan
}

// New creates a Backup collector over the given regional clients. filter, if
// non-empty, keeps only resources whose ARN matches an entry.
func New(clients map[string]regional.Client[API], filter []string) *Collector {
	return &Collector{clients: clients, filter: filter}
}

// Collect runs every listing operation to exhaustion and blocks until all
// regional workers have finished.
func (c *Collector) Collect(ctx context.Context) {
	regional.ForEach(ctx, "backup", c.clients, c.listBackupVaults)
	regional.ForEach(ctx, "backup", c.clients, c.listBackupPlans)
	regional.ForEach(ctx, "backup", c.clients, c.listReportPlans)
}

func (c *Collector) keep(arn string) bool {
	return len(c.filter) == 0 || scanfilter.IsIncluded(arn, c.filter)
}

func (c *Collector) listBackupVaults(ctx context.Context, rc regional.Client[API]) error {
	paginator := backup.NewListBackupVaultsPaginator(rc.API, &backup.ListBackupVaultsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, vault := range page.BackupVaultList {
			arn := aws.ToString(vault.BackupVaultArn)
			if !c.keep(arn) {
				continue
			}
			c.mu.Lock()
			c.Vaults = append(c.Vaults, Vault{
				ARN:              arn,
				Name:             aws.ToString(vault.BackupVaultName),
				Region:           rc.Region,
				EncryptionKeyARN: aws.ToString(vault.EncryptionKeyArn),
				RecoveryPoints:   vault.NumberOfRecoveryPoints,
				Locked:           aws.ToBool(vault.Locked),
				MinRetentionDays: aws.ToInt64(vault.MinRetentionDays),
				MaxRetentionDays: aws.ToInt64(vault.MaxRetentionDays),
			})
			c.mu.Unlock()
		}
	}
	return nil
}

func (c *Collector) listBackupPlans(ctx context.Context, rc regional.Client[API]) error {
	paginator := backup.NewListBackupPlansPaginator(rc.API, &backup.ListBackupPlansInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, plan := range page.BackupPlansList {
			arn := aws.ToString(plan.BackupPlanArn)
			if !c.keep(arn) {
				continue
			}
			c.mu.Lock()
			c.Plans = append(c.Plans, Plan{
				ARN:               arn,
				ID:                aws.ToString(plan.BackupPlanId),
				Name:              aws.ToString(plan.BackupPlanName),
				Region:            rc.Region,
				VersionID:         aws.ToString(plan.VersionId),
				LastExecutionDate: aws.ToTime(plan.LastExecutionDate),
			})
			c.mu.Unlock()
		}
	}
	return nil
}

func (c *Collector) listReportPlans(ctx context.Context, rc regional.Client[API]) error {
	out, err := rc.API.ListReportPlans(ctx, &backup.ListReportPlansInput{})
	if err != nil {
		return err
	}
	for _, plan := range out.ReportPlans {
		arn := aws.ToString(plan.ReportPlanArn)
		if !c.keep(arn) {
			continue
		}
		c.mu.Lock()
		c.ReportPlans = append(c.ReportPlans, ReportPlan{
			ARN:                         arn,
			Name:                        aws.ToString(plan.ReportPlanName),
			Region:                      rc.Region,
			LastAttemptedExecutionTime:  aws.ToTime(plan.LastAttemptedExecutionTime),
			LastSuccessfulExecutionTime: aws.ToTime(plan.LastSuccessfulExecutionTime),
		})
		c.mu.Unlock()
	}
	return nil
}
