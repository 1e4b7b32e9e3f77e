package dnsaudit

import (
	"fmt"
	"slices"

	"github.com/thirukguru/aws-auditor/model"
)

const (
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

var checkTable = map[string]func(*Collector) []model.Finding{
	"route53_public_hosted_zones_cloudwatch_logging_enabled": publicZonesQueryLogging,
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

func publicZonesQueryLogging(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, zone := range c.HostedZones {
		if zone.PrivateZone || zone.QueryLogging {
			continue
		}
		findings = append(findings, model.Finding{
			Check:          "route53_public_hosted_zones_cloudwatch_logging_enabled",
			Service:        "route53",
			Severity:       SeverityMedium,
			Region:         zone.Region,
			ResourceARN:    zone.ARN,
			ResourceID:     zone.ID,
			Description:    fmt.Sprintf("Public hosted zone %s has no DNS query logging", zone.Name),
			Recommendation: "Enable query logging to CloudWatch Logs for the zone",
		})
	}
	return findings
}
