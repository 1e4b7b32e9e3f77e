package ec2audit

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/thirukguru/aws-auditor/service/regional"
)

type fakeEC2API struct {
	groups []ec2types.SecurityGroup
	acls   []ec2types.NetworkAcl
}

func (f *fakeEC2API) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return &ec2.DescribeSecurityGroupsOutput{SecurityGroups: f.groups}, nil
}

func (f *fakeEC2API) DescribeNetworkAcls(ctx context.Context, params *ec2.DescribeNetworkAclsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkAclsOutput, error) {
	return &ec2.DescribeNetworkAclsOutput{NetworkAcls: f.acls}, nil
}

func openToWorldRule() ec2types.IpPermission {
	return ec2types.IpPermission{
		IpProtocol: aws.String("-1"),
		IpRanges:   []ec2types.IpRange{{CidrIp: aws.String("0.0.0.0/0")}},
	}
}

func newTestCollector(api *fakeEC2API) *Collector {
	clients := map[string]regional.Client[API]{
		"us-east-1": {Region: "us-east-1", API: api},
	}
	return New(clients, nil, "aws", "123456789012")
}

func TestCollectDerivesARNs(t *testing.T) {
	api := &fakeEC2API{
		groups: []ec2types.SecurityGroup{{
			GroupId:   aws.String("sg-1"),
			GroupName: aws.String("web"),
		}},
		acls: []ec2types.NetworkAcl{{
			NetworkAclId: aws.String("acl-1"),
		}},
	}

	c := newTestCollector(api)
	c.Collect(context.Background())

	if len(c.SecurityGroups) != 1 {
		t.Fatalf("expected 1 security group, got %d", len(c.SecurityGroups))
	}
	wantSG := "arn:aws:ec2:us-east-1:123456789012:security-group/sg-1"
	if c.SecurityGroups[0].ARN != wantSG {
		t.Fatalf("security group ARN = %q, want %q", c.SecurityGroups[0].ARN, wantSG)
	}
	wantACL := "arn:aws:ec2:us-east-1:123456789012:network-acl/acl-1"
	if c.NetworkACLs[0].ARN != wantACL {
		t.Fatalf("network ACL ARN = %q, want %q", c.NetworkACLs[0].ARN, wantACL)
	}
}

func TestCollectFilterMatchesDerivedARN(t *testing.T) {
	api := &fakeEC2API{
		groups: []ec2types.SecurityGroup{
			{GroupId: aws.String("sg-1"), GroupName: aws.String("web")},
			{GroupId: aws.String("sg-2"), GroupName: aws.String("db")},
		},
	}
	clients := map[string]regional.Client[API]{
		"us-east-1": {Region: "us-east-1", API: api},
	}

	c := New(clients, []string{"arn:aws:ec2:us-east-1:123456789012:security-group/sg-2"}, "aws", "123456789012")
	c.Collect(context.Background())

	if len(c.SecurityGroups) != 1 || c.SecurityGroups[0].ID != "sg-2" {
		t.Fatalf("expected only sg-2, got %+v", c.SecurityGroups)
	}
}

func TestRuleOpenToWorld(t *testing.T) {
	if !ruleOpenToWorld(openToWorldRule()) {
		t.Fatal("expected 0.0.0.0/0 to be open to the world")
	}
	if !ruleOpenToWorld(ec2types.IpPermission{
		Ipv6Ranges: []ec2types.Ipv6Range{{CidrIpv6: aws.String("::/0")}},
	}) {
		t.Fatal("expected ::/0 to be open to the world")
	}
	if ruleOpenToWorld(ec2types.IpPermission{
		IpRanges: []ec2types.IpRange{{CidrIp: aws.String("10.0.0.0/8")}},
	}) {
		t.Fatal("did not expect a private CIDR to be open to the world")
	}
}

func TestCoversAllPorts(t *testing.T) {
	if !coversAllPorts(ec2types.IpPermission{IpProtocol: aws.String("-1")}) {
		t.Fatal("expected protocol -1 to cover all ports")
	}
	if !coversAllPorts(ec2types.IpPermission{
		IpProtocol: aws.String("tcp"),
		FromPort:   aws.Int32(0),
		ToPort:     aws.Int32(65535),
	}) {
		t.Fatal("expected 0-65535 to cover all ports")
	}
	if coversAllPorts(ec2types.IpPermission{
		IpProtocol: aws.String("tcp"),
		FromPort:   aws.Int32(443),
		ToPort:     aws.Int32(443),
	}) {
		t.Fatal("did not expect a single port to cover all ports")
	}
}

func TestSecurityGroupOpenToInternetCheck(t *testing.T) {
	c := New(nil, nil, "aws", "123456789012")
	c.SecurityGroups = []SecurityGroup{
		{ARN: "arn:open", ID: "sg-1", Name: "web", Region: "us-east-1", IngressRules: []ec2types.IpPermission{openToWorldRule()}},
		{ARN: "arn:tight", ID: "sg-2", Name: "db", Region: "us-east-1", IngressRules: []ec2types.IpPermission{{
			IpProtocol: aws.String("tcp"),
			FromPort:   aws.Int32(5432),
			ToPort:     aws.Int32(5432),
			IpRanges:   []ec2types.IpRange{{CidrIp: aws.String("10.0.0.0/8")}},
		}}},
	}

	findings := c.RunChecks([]string{"ec2_securitygroup_allow_ingress_from_internet_to_any_port"})
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %+v", findings)
	}
	if findings[0].ResourceID != "sg-1" || findings[0].Severity != SeverityCritical {
		t.Fatalf("unexpected finding: %+v", findings[0])
	}
}

func TestDefaultSecurityGroupCheck(t *testing.T) {
	c := New(nil, nil, "aws", "123456789012")
	c.SecurityGroups = []SecurityGroup{
		{ARN: "arn:default", ID: "sg-1", Name: "default", Region: "us-east-1", IngressRules: []ec2types.IpPermission{openToWorldRule()}},
		{ARN: "arn:default-clean", ID: "sg-2", Name: "default", Region: "eu-west-1"},
		{ARN: "arn:custom", ID: "sg-3", Name: "web", Region: "us-east-1", IngressRules: []ec2types.IpPermission{openToWorldRule()}},
	}

	findings := c.RunChecks([]string{"ec2_securitygroup_default_restrict_traffic"})
	if len(findings) != 1 || findings[0].ResourceID != "sg-1" {
		t.Fatalf("expected only the default group with rules, got %+v", findings)
	}
}

func TestNetworkACLAllowsAnyIngressCheck(t *testing.T) {
	c := New(nil, nil, "aws", "123456789012")
	c.NetworkACLs = []NetworkACL{
		{ARN: "arn:acl-open", ID: "acl-1", Region: "us-east-1", Entries: []ec2types.NetworkAclEntry{{
			Egress:     aws.Bool(false),
			RuleAction: ec2types.RuleActionAllow,
			Protocol:   aws.String("-1"),
			CidrBlock:  aws.String("0.0.0.0/0"),
		}}},
		{ARN: "arn:acl-deny", ID: "acl-2", Region: "us-east-1", Entries: []ec2types.NetworkAclEntry{{
			Egress:     aws.Bool(false),
			RuleAction: ec2types.RuleActionDeny,
			Protocol:   aws.String("-1"),
			CidrBlock:  aws.String("0.0.0.0/0"),
		}}},
		{ARN: "arn:acl-egress", ID: "acl-3", Region: "us-east-1", Entries: []ec2types.NetworkAclEntry{{
			Egress:     aws.Bool(true),
			RuleAction: ec2types.RuleActionAllow,
			Protocol:   aws.String("-1"),
			CidrBlock:  aws.String("0.0.0.0/0"),
		}}},
	}

	findings := c.RunChecks([]string{"ec2_networkacl_allow_ingress_any_port"})
	if len(findings) != 1 || findings[0].ResourceID != "acl-1" {
		t.Fatalf("expected only the open ingress ACL, got %+v", findings)
	}
}
