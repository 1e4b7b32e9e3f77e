// Package lambdaaudit collects Lambda function inventory across regions.
package lambdaaudit

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/thirukguru/aws-auditor/service/regional"
	"github.com/thirukguru/aws-auditor/service/scanfilter"
)

// API is the Lambda surface the collector needs.
type API interface {
	ListFunctions(ctx context.Context, params *lambda.ListFunctionsInput, optFns ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
}

// Function is one Lambda function. EnvVarNames carries only the variable
// names; values never leave the listing call.
type Function struct {
	ARN         string
	Name        string
	Region      string
	Runtime     string
	EnvVarNames []string
}

// Collector gathers Lambda functions, one concurrent worker per region.
type Collector struct {
	clients map[string]regional.Client[API]
	filter  []string

	mu        sync.Mutex
	Functions []Function
}

// New creates a Lambda collector over the given regional clients.
func New(clients map[string]regional.Client[API], filter []string) *Collector {
	return &Collector{clients: clients, filter: filter}
}

// Collect lists every function in every region and blocks until all regional
// workers have finished.
func (c *Collector) Collect(ctx context.Context) {
	regional.ForEach(ctx, "awslambda", c.clients, c.listFunctions)
}

func (c *Collector) keep(arn string) bool {
	return len(c.filter) == 0 || scanfilter.IsIncluded(arn, c.filter)
}

func (c *Collector) listFunctions(ctx context.Context, rc regional.Client[API]) error {
	paginator := lambda.NewListFunctionsPaginator(rc.API, &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, fn := range page.Functions {
			arn := aws.ToString(fn.FunctionArn)
			if !c.keep(arn) {
				continue
			}
			var envNames []string
			if fn.Environment != nil {
				for name := range fn.Environment.Variables {
					envNames = append(envNames, name)
				}
			}
			c.mu.Lock()
			c.Functions = append(c.Functions, Function{
				ARN:         arn,
				Name:        aws.ToString(fn.FunctionName),
				Region:      rc.Region,
				Runtime:     string(fn.Runtime),
				EnvVarNames: envNames,
			})
			c.mu.Unlock()
		}
	}
	return nil
}
