package ec2audit

import (
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/thirukguru/aws-auditor/model"
)

const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

var checkTable = map[string]func(*Collector) []model.Finding{
	"ec2_securitygroup_allow_ingress_from_internet_to_any_port": securityGroupOpenToInternet,
	"ec2_securitygroup_default_restrict_traffic":                defaultSecurityGroupRestricts,
	"ec2_networkacl_allow_ingress_any_port":                     networkACLAllowsAnyIngress,
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

func ruleOpenToWorld(rule ec2types.IpPermission) bool {
	for _, r := range rule.IpRanges {
		if aws.ToString(r.CidrIp) == "0.0.0.0/0" {
			return true
		}
	}
	for _, r := range rule.Ipv6Ranges {
		if aws.ToString(r.CidrIpv6) == "::/0" {
			return true
		}
	}
	return false
}

// coversAllPorts reports whether a permission spans every port: either the
// all-protocols marker (-1) or an explicit 0-65535 range.
func coversAllPorts(rule ec2types.IpPermission) bool {
	if aws.ToString(rule.IpProtocol) == "-1" {
		return true
	}
	return aws.ToInt32(rule.FromPort) == 0 && aws.ToInt32(rule.ToPort) == 65535
}

func securityGroupOpenToInternet(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, sg := range c.SecurityGroups {
		for _, rule := range sg.IngressRules {
			if !ruleOpenToWorld(rule) || !coversAllPorts(rule) {
				continue
			}
			findings = append(findings, model.Finding{
				Check:          "ec2_securitygroup_allow_ingress_from_internet_to_any_port",
				Service:        "ec2",
				Severity:       SeverityCritical,
				Region:         sg.Region,
				ResourceARN:    sg.ARN,
				ResourceID:     sg.ID,
				Description:    fmt.Sprintf("Security group %s (%s) allows ingress from the internet to any port", sg.Name, sg.ID),
				Recommendation: "Restrict the rule to required source CIDRs and ports",
			})
			break
		}
	}
	return findings
}

func defaultSecurityGroupRestricts(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, sg := range c.SecurityGroups {
		if sg.Name != "default" || len(sg.IngressRules) == 0 {
			continue
		}
		findings = append(findings, model.Finding{
			Check:          "ec2_securitygroup_default_restrict_traffic",
			Service:        "ec2",
			Severity:       SeverityHigh,
			Region:         sg.Region,
			ResourceARN:    sg.ARN,
			ResourceID:     sg.ID,
			Description:    fmt.Sprintf("Default security group %s has ingress rules", sg.ID),
			Recommendation: "Remove all rules from the default security group and use purpose-built groups",
		})
	}
	return findings
}

func networkACLAllowsAnyIngress(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, acl := range c.NetworkACLs {
		for _, entry := range acl.Entries {
			if aws.ToBool(entry.Egress) || entry.RuleAction != ec2types.RuleActionAllow {
				continue
			}
			if aws.ToString(entry.CidrBlock) != "0.0.0.0/0" && aws.ToString(entry.Ipv6CidrBlock) != "::/0" {
				continue
			}
			if aws.ToString(entry.Protocol) != "-1" {
				continue
			}
			findings = append(findings, model.Finding{
				Check:          "ec2_networkacl_allow_ingress_any_port",
				Service:        "ec2",
				Severity:       SeverityMedium,
				Region:         acl.Region,
				ResourceARN:    acl.ARN,
				ResourceID:     acl.ID,
				Description:    fmt.Sprintf("Network ACL %s allows ingress to any port from anywhere", acl.ID),
				Recommendation: "Tighten the ACL entry to required protocols and sources",
			})
			break
		}
	}
	return findings
}
