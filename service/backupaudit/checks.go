package backupaudit

import (
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
	"backup_vaults_exist":      vaultsExist,
	"backup_plans_exist":       plansExist,
	"backup_reportplans_exist": reportPlansExist,
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

func vaultsExist(c *Collector) []model.Finding {
	if len(c.Vaults) > 0 {
		return nil
	}
	return []model.Finding{{
		Check:          "backup_vaults_exist",
		Service:        "backup",
		Severity:       SeverityMedium,
		Description:    "No Backup vault exists",
		Recommendation: "Create a Backup vault and protect critical workloads with it",
	}}
}

func plansExist(c *Collector) []model.Finding {
	if len(c.Plans) > 0 {
		return nil
	}
	return []model.Finding{{
		Check:          "backup_plans_exist",
		Service:        "backup",
		Severity:       SeverityMedium,
		Description:    "No Backup plan exists",
		Recommendation: "Create a Backup plan with a schedule and retention rules",
	}}
}

func reportPlansExist(c *Collector) []model.Finding {
	// Report plans only matter once there is something to report on.
	if len(c.Vaults) == 0 && len(c.Plans) == 0 {
		return nil
	}
	if len(c.ReportPlans) > 0 {
		return nil
	}
	return []model.Finding{{
		Check:          "backup_reportplans_exist",
		Service:        "backup",
		Severity:       SeverityLow,
		Description:    "No Backup report plan exists",
		Recommendation: "Create a Backup report plan to track backup and restore compliance",
	}}
}
