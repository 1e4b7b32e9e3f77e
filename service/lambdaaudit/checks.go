package lambdaaudit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thirukguru/aws-auditor/model"
)

const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// deprecatedRuntimes are runtimes past their AWS end-of-support date.
var deprecatedRuntimes = map[string]bool{
	"python2.7":     true,
	"python3.6":     true,
	"python3.7":     true,
	"nodejs10.x":    true,
	"nodejs12.x":    true,
	"nodejs14.x":    true,
	"ruby2.5":       true,
	"ruby2.7":       true,
	"dotnetcore2.1": true,
	"dotnetcore3.1": true,
	"go1.x":         true,
}

var secretKeyIndicators = []string{
	"SECRET", "TOKEN", "PASSWORD", "PASSWD", "API_KEY", "APIKEY",
	"ACCESS_KEY", "PRIVATE_KEY", "CREDENTIAL",
}

func looksLikeSecretKeyName(name string) bool {
	upper := strings.ToUpper(name)
	for _, indicator := range secretKeyIndicators {
		if strings.Contains(upper, indicator) {
			return true
		}
	}
	return false
}

var checkTable = map[string]func(*Collector) []model.Finding{
	"awslambda_function_using_supported_runtimes": supportedRuntimes,
	"awslambda_function_no_secrets_in_variables":  noSecretsInVariables,
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

func supportedRuntimes(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, fn := range c.Functions {
		if !deprecatedRuntimes[fn.Runtime] {
			continue
		}
		findings = append(findings, model.Finding{
			Check:          "awslambda_function_using_supported_runtimes",
			Service:        "awslambda",
			Severity:       SeverityMedium,
			Region:         fn.Region,
			ResourceARN:    fn.ARN,
			ResourceID:     fn.Name,
			Description:    fmt.Sprintf("Function %s uses deprecated runtime %s", fn.Name, fn.Runtime),
			Recommendation: "Migrate the function to a currently supported runtime",
		})
	}
	return findings
}

func noSecretsInVariables(c *Collector) []model.Finding {
	var findings []model.Finding
	for _, fn := range c.Functions {
		for _, name := range fn.EnvVarNames {
			if !looksLikeSecretKeyName(name) {
				continue
			}
			findings = append(findings, model.Finding{
				Check:          "awslambda_function_no_secrets_in_variables",
				Service:        "awslambda",
				Severity:       SeverityCritical,
				Region:         fn.Region,
				ResourceARN:    fn.ARN,
				ResourceID:     fn.Name,
				Description:    fmt.Sprintf("Function %s has a secret-like environment variable %s", fn.Name, name),
				Recommendation: "Move secrets to Secrets Manager or SSM Parameter Store",
			})
			break
		}
	}
	return findings
}
