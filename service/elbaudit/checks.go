package elbaudit

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
	"elbv2_internet_facing":    internetFacing,
	"elbv2_insecure_listeners": insecureListeners,
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

func internetFacing(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, lb := range c.LoadBalancers {
		if lb.Scheme != "internet-facing" {
			continue
		}
		findings = append(findings, model.Finding{
			Check:          "elbv2_internet_facing",
			Service:        "elb",
			Severity:       SeverityMedium,
			Region:         lb.Region,
			ResourceARN:    lb.ARN,
			ResourceID:     lb.Name,
			Description:    fmt.Sprintf("Load balancer %s is internet-facing", lb.Name),
			Recommendation: "Confirm the load balancer must be public; otherwise make it internal",
		})
	}
	return findings
}

func insecureListeners(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, l := range c.Listeners {
		if l.Protocol != "HTTP" && l.Protocol != "TCP" {
			continue
		}
		findings = append(findings, model.Finding{
			Check:          "elbv2_insecure_listeners",
			Service:        "elb",
			Severity:       SeverityHigh,
			Region:         l.Region,
			ResourceARN:    l.ARN,
			ResourceID:     l.LoadBalancerARN,
			Description:    fmt.Sprintf("Listener on port %d uses unencrypted protocol %s", l.Port, l.Protocol),
			Recommendation: "Terminate TLS on the listener (HTTPS/TLS) with a valid certificate",
		})
	}
	return findings
}
