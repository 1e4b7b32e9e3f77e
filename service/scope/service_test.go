package scope

import (
	"errors"
	"reflect"
	"testing"
)

type fakeCatalog map[string]bool

func (f fakeCatalog) HasService(name string) bool { return f[name] }

var coveredServices = fakeCatalog{
	"awslambda":  true,
	"backup":     true,
	"ec2":        true,
	"elb":        true,
	"rds":        true,
	"route53":    true,
	"cloudwatch": true,
	"guardduty":  true,
	"kms":        true,
	"s3":         true,
	"iam":        true,
}

func TestResolveEmptyInputIsUnscoped(t *testing.T) {
	decision, err := NewService(coveredServices).Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if decision.Narrowed {
		t.Fatal("expected unscoped decision for empty input")
	}
	if !decision.ServiceInScope("rds") || !decision.ServiceInScope("anything") {
		t.Fatal("unscoped decision must keep every service in scope")
	}
}

func TestResolveMalformedARN(t *testing.T) {
	_, err := NewService(coveredServices).Resolve([]string{"arn:aws:lambda"})
	if err == nil {
		t.Fatal("expected error for malformed ARN")
	}
	var malformed *MalformedIdentifierError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedIdentifierError, got %T", err)
	}
	if malformed.ARN != "arn:aws:lambda" {
		t.Fatalf("unexpected ARN in error: %q", malformed.ARN)
	}
}

func TestResolveLambdaWithWAFExcluded(t *testing.T) {
	decision, err := NewService(coveredServices).Resolve([]string{
		"arn:aws:lambda:us-east-1:123456789012:function:api",
		"arn:aws:waf::123456789012:rule/example",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !decision.Narrowed {
		t.Fatal("expected narrowed decision")
	}
	if !reflect.DeepEqual(decision.Services, []string{"awslambda"}) {
		t.Fatalf("Services = %v, want [awslambda]", decision.Services)
	}
	if !reflect.DeepEqual(decision.Regions, []string{"us-east-1"}) {
		t.Fatalf("Regions = %v, want [us-east-1]", decision.Regions)
	}
	if decision.ServiceInScope("rds") {
		t.Fatal("rds must be out of scope")
	}
}

func TestResolveSubserviceAliases(t *testing.T) {
	cases := []struct {
		arn  string
		want string
	}{
		{"arn:aws:ec2:eu-west-1:123456789012:security-group/sg-1", "securitygroup"},
		{"arn:aws:ec2:eu-west-1:123456789012:network-acl/acl-1", "networkacl"},
		{"arn:aws:ec2:eu-west-1:123456789012:image/ami-1", "ami"},
		{"arn:aws:rds:eu-west-1:123456789012:cluster_snapshot:snap-1", "snapshot"},
	}
	for _, tc := range cases {
		decision, err := NewService(coveredServices).Resolve([]string{tc.arn})
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", tc.arn, err)
		}
		if !reflect.DeepEqual(decision.Subservices, []string{tc.want}) {
			t.Fatalf("Subservices for %q = %v, want [%s]", tc.arn, decision.Subservices, tc.want)
		}
	}
}

func TestResolveFlatServices(t *testing.T) {
	decision, err := NewService(coveredServices).Resolve([]string{
		"arn:aws:s3:::my-bucket",
		"arn:aws:elasticloadbalancing:us-west-2:123456789012:loadbalancer/app/web/abc",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !reflect.DeepEqual(decision.Services, []string{"elb", "s3"}) {
		t.Fatalf("Services = %v, want [elb s3]", decision.Services)
	}
	if !reflect.DeepEqual(decision.Subservices, []string{"elb", "s3"}) {
		t.Fatalf("Subservices = %v, want [elb s3]", decision.Subservices)
	}
}

func TestResolveServiceAliases(t *testing.T) {
	decision, err := NewService(coveredServices).Resolve([]string{
		"arn:aws:logs:us-east-1:123456789012:log-group:/aws/lambda/api",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !reflect.DeepEqual(decision.Services, []string{"cloudwatch"}) {
		t.Fatalf("Services = %v, want [cloudwatch]", decision.Services)
	}
}

func TestResolveRegionFirstAppearanceOrder(t *testing.T) {
	decision, err := NewService(coveredServices).Resolve([]string{
		"arn:aws:rds:eu-west-1:123456789012:db:one",
		"arn:aws:rds:us-east-1:123456789012:db:two",
		"arn:aws:rds:eu-west-1:123456789012:db:three",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !reflect.DeepEqual(decision.Regions, []string{"eu-west-1", "us-east-1"}) {
		t.Fatalf("Regions = %v, want [eu-west-1 us-east-1]", decision.Regions)
	}
}

func TestResolveWAFRegionStillCollected(t *testing.T) {
	// The service is excluded but its region still narrows the run.
	decision, err := NewService(coveredServices).Resolve([]string{
		"arn:aws:wafv2:ap-south-1:123456789012:regional/webacl/example/abc",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(decision.Services) != 0 {
		t.Fatalf("Services = %v, want none", decision.Services)
	}
	if !reflect.DeepEqual(decision.Regions, []string{"ap-south-1"}) {
		t.Fatalf("Regions = %v, want [ap-south-1]", decision.Regions)
	}
}

func TestResolveUncoveredServiceExcluded(t *testing.T) {
	decision, err := NewService(coveredServices).Resolve([]string{
		"arn:aws:sagemaker:us-east-1:123456789012:notebook-instance/example",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(decision.Services) != 0 {
		t.Fatalf("Services = %v, want none", decision.Services)
	}
	if !decision.Narrowed {
		t.Fatal("decision must still be narrowed")
	}
}

func TestResolveInputOrderInvariance(t *testing.T) {
	arns := []string{
		"arn:aws:ec2:eu-west-1:123456789012:security-group/sg-1",
		"arn:aws:lambda:eu-west-1:123456789012:function:api",
		"arn:aws:s3:::my-bucket",
	}
	reversed := []string{arns[2], arns[1], arns[0]}

	svc := NewService(coveredServices)
	a, err := svc.Resolve(arns)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	b, err := svc.Resolve(reversed)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !reflect.DeepEqual(a.Services, b.Services) {
		t.Fatalf("Services differ by input order: %v vs %v", a.Services, b.Services)
	}
	if !reflect.DeepEqual(a.Subservices, b.Subservices) {
		t.Fatalf("Subservices differ by input order: %v vs %v", a.Subservices, b.Subservices)
	}
}
