package rdsaudit

import (
	"fmt"
	"slices"

	"github.com/thirukguru/aws-auditor/model"
)

const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

var checkTable = map[string]func(*Collector) []model.Finding{
	"rds_instance_storage_encrypted": instanceStorageEncrypted,
	"rds_instance_multi_az":          instanceMultiAZ,
	"rds_instance_no_public_access":  instanceNoPublicAccess,
	"rds_snapshots_encrypted":        snapshotsEncrypted,
}

// CheckNames returns the checks this collector can run, sorted.
func CheckNames() []string {
	names := make([]string, 0, len(checkTable))
	for name := range checkTable {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RunChecks executes the selected checks over the collected inventory.
func (c *Collector) RunChecks(selected []string) []model.Finding {
	var findings []model.Finding
	for _, name := range selected {
		if run, ok := checkTable[name]; ok {
			findings = append(findings, run(c)...)
		}
	}
	return findings
}

func instanceStorageEncrypted(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, db := range c.Instances {
		if db.StorageEncrypted {
			continue
		}
		findings = append(findings, model.Finding{
			Check:          "rds_instance_storage_encrypted",
			Service:        "rds",
			Severity:       SeverityHigh,
			Region:         db.Region,
			ResourceARN:    db.ARN,
			ResourceID:     db.ID,
			Description:    fmt.Sprintf("DB instance %s has unencrypted storage", db.ID),
			Recommendation: "Recreate the instance from an encrypted snapshot",
		})
	}
	return findings
}

func instanceMultiAZ(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, db := range c.Instances {
		if db.MultiAZ {
			continue
		}
		findings = append(findings, model.Finding{
			Check:          "rds_instance_multi_az",
			Service:        "rds",
			Severity:       SeverityLow,
			Region:         db.Region,
			ResourceARN:    db.ARN,
			ResourceID:     db.ID,
			Description:    fmt.Sprintf("DB instance %s is not Multi-AZ", db.ID),
			Recommendation: "Enable Multi-AZ for availability during AZ failure",
		})
	}
	return findings
}

func instanceNoPublicAccess(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, db := range c.Instances {
		if !db.PubliclyAccessible {
			continue
		}
		findings = append(findings, model.Finding{
			Check:          "rds_instance_no_public_access",
			Service:        "rds",
			Severity:       SeverityCritical,
			Region:         db.Region,
			ResourceARN:    db.ARN,
			ResourceID:     db.ID,
			Description:    fmt.Sprintf("DB instance %s is publicly accessible", db.ID),
			Recommendation: "Disable public accessibility and route access through the VPC",
		})
	}
	return findings
}

func snapshotsEncrypted(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, snap := range c.ClusterSnapshots {
		if snap.StorageEncrypted {
			continue
		}
		findings = append(findings, model.Finding{
			Check:          "rds_snapshots_encrypted",
			Service:        "rds",
			Severity:       SeverityHigh,
			Region:         snap.Region,
			ResourceARN:    snap.ARN,
			ResourceID:     snap.ID,
			Description:    fmt.Sprintf("Cluster snapshot %s is unencrypted", snap.ID),
			Recommendation: "Copy the snapshot with encryption enabled and delete the plaintext one",
		})
	}
	return findings
}
