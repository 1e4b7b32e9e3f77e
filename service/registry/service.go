// Package registry holds the static catalog of security checks per service
// and narrows it to the checks applicable to a resource scope.
package registry

import (
	"fmt"
	"slices"
	"strings"
)

// ErrServiceNotFound is returned when a service has no registered checks.
var ErrServiceNotFound = fmt.Errorf("service has no registered checks")

// checkCatalog maps the internal service identifier to its check names. A
// service absent from this map has no coverage; resolvers treat that as
// exclusion, not failure.
var checkCatalog = map[string][]string{
	"awslambda": {
		"awslambda_function_no_secrets_in_variables",
		"awslambda_function_using_supported_runtimes",
	},
	"backup": {
		"backup_plans_exist",
		"backup_reportplans_exist",
		"backup_vaults_exist",
	},
	"cloudwatch": {
		"cloudwatch_log_group_retention_policy_specific_days_enabled",
	},
	"ec2": {
		"ec2_networkacl_allow_ingress_any_port",
		"ec2_securitygroup_allow_ingress_from_internet_to_any_port",
		"ec2_securitygroup_default_restrict_traffic",
	},
	"elb": {
		"elbv2_insecure_listeners",
		"elbv2_internet_facing",
	},
	"guardduty": {
		"guardduty_is_enabled",
	},
	"iam": {
		"iam_password_policy_minimum_length_14",
		"iam_policy_allows_privilege_escalation",
	},
	"kms": {
		"kms_cmk_rotation_enabled",
	},
	"rds": {
		"rds_instance_multi_az",
		"rds_instance_no_public_access",
		"rds_instance_storage_encrypted",
		"rds_snapshots_encrypted",
	},
	"route53": {
		"route53_public_hosted_zones_cloudwatch_logging_enabled",
	},
	"s3": {
		"s3_bucket_public_access",
	},
}

// NewService creates a new check registry service.
func NewService() Service {
	return &service{}
}

func (s *service) HasService(name string) bool {
	_, ok := checkCatalog[name]
	return ok
}

func (s *service) ListChecksForService(name string) ([]string, error) {
	checks, ok := checkCatalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	return slices.Clone(checks), nil
}

func (s *service) ChecksForServices(services []string) []string {
	var out []string
	for _, svc := range services {
		out = append(out, checkCatalog[svc]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SelectChecks intersects the check set for the given services against the
// subservice tokens by substring containment. A token equal to "policy" never
// matches a password_policy check; those are distinct controls sharing a
// substring.
func (s *service) SelectChecks(services, subservices []string) []string {
	var out []string
	for _, check := range s.ChecksForServices(services) {
		for _, token := range subservices {
			if !strings.Contains(check, token) {
				continue
			}
			if token == "policy" && strings.Contains(check, "password_policy") {
				continue
			}
			out = append(out, check)
			break
		}
	}
	return out
}
