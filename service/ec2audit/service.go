// Package ec2audit collects EC2 network inventory across regions.
package ec2audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/thirukguru/aws-auditor/service/regional"
	"github.com/thirukguru/aws-auditor/service/scanfilter"
)

// API is the EC2 surface the collector needs.
type API interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeNetworkAcls(ctx context.Context, params *ec2.DescribeNetworkAclsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkAclsOutput, error)
}

// SecurityGroup is one EC2 security group with its ingress permissions.
type SecurityGroup struct {
	ARN          string
	ID           string
	Name         string
	Region       string
	IngressRules []ec2types.IpPermission
}

// NetworkACL is one EC2 network ACL with its entries.
type NetworkACL struct {
	ARN     string
	ID      string
	Region  string
	Entries []ec2types.NetworkAclEntry
}

// Collector gathers security groups and network ACLs, one concurrent worker
// per region per listing operation. EC2 listings carry no ARN, so the
// collector derives them from the audited partition and account.
type Collector struct {
	clients   map[string]regional.Client[API]
	filter    []string
	partition string
	accountID string

	mu             sync.Mutex
	SecurityGroups []SecurityGroup
	NetworkACLs    []NetworkACL
}

// New creates an EC2 collector over the given regional clients.
func New(clients map[string]regional.Client[API], filter []string, partition, accountID string) *Collector {
	return &Collector{clients: clients, filter: filter, partition: partition, accountID: accountID}
}

// Collect runs every listing operation to exhaustion and blocks until all
// regional workers have finished.
func (c *Collector) Collect(ctx context.Context) {
	regional.ForEach(ctx, "ec2", c.clients, c.describeSecurityGroups)
	regional.ForEach(ctx, "ec2", c.clients, c.describeNetworkACLs)
}

func (c *Collector) keep(arn string) bool {
	return len(c.filter) == 0 || scanfilter.IsIncluded(arn, c.filter)
}

func (c *Collector) resourceARN(region, resource string) string {
	return fmt.Sprintf("arn:%s:ec2:%s:%s:%s", c.partition, region, c.accountID, resource)
}

func (c *Collector) describeSecurityGroups(ctx context.Context, rc regional.Client[API]) error {
	paginator := ec2.NewDescribeSecurityGroupsPaginator(rc.API, &ec2.DescribeSecurityGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, sg := range page.SecurityGroups {
			id := aws.ToString(sg.GroupId)
			arn := c.resourceARN(rc.Region, "security-group/"+id)
			if !c.keep(arn) {
				continue
			}
			c.mu.Lock()
			c.SecurityGroups = append(c.SecurityGroups, SecurityGroup{
				ARN:          arn,
				ID:           id,
				Name:         aws.ToString(sg.GroupName),
				Region:       rc.Region,
				IngressRules: sg.IpPermissions,
			})
			c.mu.Unlock()
		}
	}
	return nil
}

func (c *Collector) describeNetworkACLs(ctx context.Context, rc regional.Client[API]) error {
	paginator := ec2.NewDescribeNetworkAclsPaginator(rc.API, &ec2.DescribeNetworkAclsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, acl := range page.NetworkAcls {
			id := aws.ToString(acl.NetworkAclId)
			arn := c.resourceARN(rc.Region, "network-acl/"+id)
			if !c.keep(arn) {
				continue
			}
			c.mu.Lock()
			c.NetworkACLs = append(c.NetworkACLs, NetworkACL{
				ARN:     arn,
				ID:      id,
				Region:  rc.Region,
				Entries: acl.Entries,
			})
			c.mu.Unlock()
		}
	}
	return nil
}
