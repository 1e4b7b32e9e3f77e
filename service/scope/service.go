// Package scope derives the audited services, subservice tokens, and regions
// from a list of resource ARNs.
package scope

import (
	"fmt"
	"slices"
	"strings"
)

// MalformedIdentifierError reports an ARN that does not follow the
// colon-delimited grammar. It is a caller error and must surface loudly; a
// scoping request the system cannot honor is never silently skipped.
type MalformedIdentifierError struct {
	ARN string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed resource identifier: %q", e.ARN)
}

// Decision is the narrowing computed once per audit run from the raw resource
// ARN list. The zero value with Narrowed=false means no narrowing at all.
type Decision struct {
	// Narrowed is false when no resource ARNs were supplied; every service
	// and region is then in scope.
	Narrowed bool
	// Services is the sorted set of internal service identifiers with at
	// least one applicable check.
	Services []string
	// Subservices is the sorted set of tokens used to filter check names.
	Subservices []string
	// Regions preserves first-appearance order of the regions embedded in
	// the ARNs. Empty means all regions remain in scope.
	Regions []string
}

// ServiceInScope reports whether collection should run for a service.
func (d Decision) ServiceInScope(service string) bool {
	return !d.Narrowed || slices.Contains(d.Services, service)
}

// serviceAliases remaps raw ARN service tokens to the internal identifiers
// used by the check catalog.
var serviceAliases = map[string]string{
	"lambda":               "awslambda",
	"elasticloadbalancing": "elb",
	"logs":                 "cloudwatch",
}

// flatServices have no meaningful subservice granularity; the subservice
// token is the service itself.
var flatServices = map[string]bool{
	"guardduty": true,
	"kms":       true,
	"s3":        true,
	"elb":       true,
}

// subserviceAliases are per-service, ad hoc remaps of the first resource path
// segment. No general rule is evident from the data; keep them literal.
var subserviceAliases = map[string]map[string]string{
	"ec2": {
		"security_group": "securitygroup",
		"network_acl":    "networkacl",
		"image":          "ami",
	},
	"rds": {
		"cluster_snapshot": "snapshot",
	},
}

// CheckCatalog is the registry collaborator consulted for service coverage.
type CheckCatalog interface {
	HasService(name string) bool
}

// NewService creates a new scope resolver backed by the given check catalog.
func NewService(catalog CheckCatalog) Service {
	return &service{catalog: catalog}
}

// Resolve computes the scope decision for the given resource ARNs. An empty
// input yields the unscoped decision.
func (s *service) Resolve(resourceARNs []string) (Decision, error) {
	if len(resourceARNs) == 0 {
		return Decision{}, nil
	}

	serviceSet := map[string]bool{}
	subserviceSet := map[string]bool{}
	var regions []string

	for _, arn := range resourceARNs {
		parts := strings.Split(arn, ":")
		if len(parts) < 6 {
			return Decision{}, &MalformedIdentifierError{ARN: arn}
		}

		svc := parts[2]
		region := parts[3]
		resourcePath := parts[5]

		if region != "" && !slices.Contains(regions, region) {
			regions = append(regions, region)
		}

		// WAF services have no checks and contribute nothing.
		if svc == "waf" || svc == "wafv2" {
			continue
		}
		if alias, ok := serviceAliases[svc]; ok {
			svc = alias
		}

		// A service without a check module is excluded, not an error.
		if s.catalog.HasService(svc) {
			serviceSet[svc] = true
		}

		if flatServices[svc] {
			subserviceSet[svc] = true
			continue
		}
		sub := strings.ReplaceAll(strings.SplitN(resourcePath, "/", 2)[0], "-", "_")
		if alias, ok := subserviceAliases[svc][sub]; ok {
			sub = alias
		}
		subserviceSet[sub] = true
	}

	return Decision{
		Narrowed:    true,
		Services:    sortedKeys(serviceSet),
		Subservices: sortedKeys(subserviceSet),
		Regions:     regions,
	}, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
