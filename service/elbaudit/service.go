// Package elbaudit collects Elastic Load Balancing v2 inventory across
// regions.
package elbaudit

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/thirukguru/aws-auditor/service/regional"
	"github.com/thirukguru/aws-auditor/service/scanfilter"
)

// API is the ELBv2 surface the collector needs.
type API interface {
	DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error)
	DescribeListeners(ctx context.Context, params *elbv2.DescribeListenersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeListenersOutput, error)
}

// LoadBalancer is one application or network load balancer.
type LoadBalancer struct {
	ARN    string
	Name   string
	Region string
	Scheme string
	Type   string
}

// Listener is one listener attached to a collected load balancer.
type Listener struct {
	ARN             string
	LoadBalancerARN string
	Region          string
	Protocol        string
	Port            int32
}

// Collector gathers load balancers and their listeners, one concurrent
// worker per region.
type Collector struct {
	clients map[string]regional.Client[API]
	filter  []string

	mu            sync.Mutex
	LoadBalancers []LoadBalancer
	Listeners     []Listener
}

// New creates an ELBv2 collector over the given regional clients.
func New(clients map[string]regional.Client[API], filter []string) *Collector {
	return &Collector{clients: clients, filter: filter}
}

// Collect lists load balancers and listeners in every region and blocks
// until all regional workers have finished.
func (c *Collector) Collect(ctx context.Context) {
	regional.ForEach(ctx, "elb", c.clients, c.describeLoadBalancers)
}

func (c *Collector) keep(arn string) bool {
	return len(c.filter) == 0 || scanfilter.IsIncluded(arn, c.filter)
}

func (c *Collector) describeLoadBalancers(ctx context.Context, rc regional.Client[API]) error {
	paginator := elbv2.NewDescribeLoadBalancersPaginator(rc.API, &elbv2.DescribeLoadBalancersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, lb := range page.LoadBalancers {
			arn := aws.ToString(lb.LoadBalancerArn)
			if !c.keep(arn) {
				continue
			}
			c.mu.Lock()
			c.LoadBalancers = append(c.LoadBalancers, LoadBalancer{
				ARN:    arn,
				Name:   aws.ToString(lb.LoadBalancerName),
				Region: rc.Region,
				Scheme: string(lb.Scheme),
				Type:   string(lb.Type),
			})
			c.mu.Unlock()
			if err := c.describeListeners(ctx, rc, arn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Collector) describeListeners(ctx context.Context, rc regional.Client[API], lbARN string) error {
	paginator := elbv2.NewDescribeListenersPaginator(rc.API, &elbv2.DescribeListenersInput{
		LoadBalancerArn: aws.String(lbARN),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, l := range page.Listeners {
			c.mu.Lock()
			c.Listeners = append(c.Listeners, Listener{
				ARN:             aws.ToString(l.ListenerArn),
				LoadBalancerARN: lbARN,
				Region:          rc.Region,
				Protocol:        string(l.Protocol),
				Port:            aws.ToInt32(l.Port),
			})
			c.mu.Unlock()
		}
	}
	return nil
}
