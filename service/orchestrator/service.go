// Package orchestrator coordinates scope resolution, per-service collection,
// and check execution for one audit run.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/thirukguru/aws-auditor/model"
	"github.com/thirukguru/aws-auditor/service/backupaudit"
	"github.com/thirukguru/aws-auditor/service/catalog"
	"github.com/thirukguru/aws-auditor/service/dnsaudit"
	"github.com/thirukguru/aws-auditor/service/ec2audit"
	"github.com/thirukguru/aws-auditor/service/elbaudit"
	"github.com/thirukguru/aws-auditor/service/lambdaaudit"
	"github.com/thirukguru/aws-auditor/service/output"
	"github.com/thirukguru/aws-auditor/service/rdsaudit"
	"github.com/thirukguru/aws-auditor/service/regional"
	"github.com/thirukguru/aws-auditor/service/registry"
	"github.com/thirukguru/aws-auditor/service/scope"
	"github.com/thirukguru/aws-auditor/service/session"
	"github.com/thirukguru/aws-auditor/service/storage"
	"golang.org/x/sync/errgroup"
)

// collectedServices are the services this auditor has collectors for. The
// registry may know more; those stay uncollected until a collector exists.
var collectedServices = []string{"awslambda", "backup", "ec2", "elb", "rds", "route53"}

// NewService creates a new orchestrator service.
func NewService(
	cat *catalog.Catalog,
	scopeService scope.Service,
	registryService registry.Service,
	outputService output.Service,
	storageService storage.Service,
	versionInfo model.VersionInfo,
) Service {
	return &service{
		catalog:         cat,
		scopeService:    scopeService,
		registryService: registryService,
		outputService:   outputService,
		storageService:  storageService,
		versionInfo:     versionInfo,
	}
}

// Orchestrate runs one audit: resolves the resource scope, collects
// inventory for every in-scope service with one concurrent goroutine per
// service, runs the selected checks, renders, and optionally stores.
func (s *service) Orchestrate(ctx context.Context, sess *session.Session, identity model.AuditIdentity) error {
	startedAt := time.Now()
	identity = withSessionDefaults(sess, identity)

	decision, err := s.scopeService.Resolve(identity.ResourceARNs)
	if err != nil {
		return fmt.Errorf("failed to resolve resource scope: %w", err)
	}
	// ARN-embedded regions narrow the run only when no explicit allow-list
	// was given; an explicit one wins.
	if decision.Narrowed && len(decision.Regions) > 0 && len(identity.Regions) == 0 {
		identity.Regions = decision.Regions
	}

	selected := s.selectedChecks(decision)

	g, gctx := errgroup.WithContext(ctx)
	var (
		backupFindings []model.Finding
		lambdaFindings []model.Finding
		ec2Findings    []model.Finding
		rdsFindings    []model.Finding
		elbFindings    []model.Finding
		dnsFindings    []model.Finding
	)

	if decision.ServiceInScope("backup") {
		g.Go(func() error {
			backupFindings = s.runBackup(gctx, sess, identity, selected)
			return nil
		})
	}
	if decision.ServiceInScope("awslambda") {
		g.Go(func() error {
			lambdaFindings = s.runLambda(gctx, sess, identity, selected)
			return nil
		})
	}
	if decision.ServiceInScope("ec2") {
		g.Go(func() error {
			ec2Findings = s.runEC2(gctx, sess, identity, selected)
			return nil
		})
	}
	if decision.ServiceInScope("rds") {
		g.Go(func() error {
			rdsFindings = s.runRDS(gctx, sess, identity, selected)
			return nil
		})
	}
	if decision.ServiceInScope("elb") {
		g.Go(func() error {
			elbFindings = s.runELB(gctx, sess, identity, selected)
			return nil
		})
	}
	if decision.ServiceInScope("route53") {
		g.Go(func() error {
			dnsFindings = s.runRoute53(gctx, sess, identity, selected)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("audit run failed: %w", err)
	}

	var findings []model.Finding
	findings = append(findings, backupFindings...)
	findings = append(findings, lambdaFindings...)
	findings = append(findings, ec2Findings...)
	findings = append(findings, rdsFindings...)
	findings = append(findings, elbFindings...)
	findings = append(findings, dnsFindings...)

	result := output.RenderInput{
		AccountID: identity.AccountID,
		Partition: identity.Partition,
		Regions:   identity.Regions,
		Findings:  findings,
		Duration:  time.Since(startedAt),
		Version:   s.versionInfo.Version,
	}
	if err := s.outputService.Render(result); err != nil {
		return fmt.Errorf("failed to render audit results: %w", err)
	}

	if s.storageService != nil {
		if err := s.storeRun(ctx, identity, findings, startedAt); err != nil {
			return fmt.Errorf("failed to store audit results: %w", err)
		}
	}
	return nil
}

// selectedChecks returns the set of check names to execute. An unscoped run
// selects every check for the services this auditor collects.
func (s *service) selectedChecks(decision scope.Decision) map[string]bool {
	var names []string
	if decision.Narrowed {
		names = s.registryService.SelectChecks(decision.Services, decision.Subservices)
	} else {
		names = s.registryService.ChecksForServices(collectedServices)
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// withSessionDefaults fills identity gaps from the established session. A
// region configured on the AWS profile steers the global-service collapse
// even when no explicit region flag was given.
func withSessionDefaults(sess *session.Session, identity model.AuditIdentity) model.AuditIdentity {
	if identity.ProfileRegion == "" {
		identity.ProfileRegion = sess.ProfileRegion
	}
	return identity
}

func pick(selected map[string]bool, names []string) []string {
	var out []string
	for _, name := range names {
		if selected[name] {
			out = append(out, name)
		}
	}
	return out
}

func (s *service) runBackup(ctx context.Context, sess *session.Session, identity model.AuditIdentity, selected map[string]bool) []model.Finding {
	checks := pick(selected, backupaudit.CheckNames())
	if len(checks) == 0 {
		return nil
	}
	clients := regional.BuildClients(sess.Cfg, s.catalog, identity, "backup", false,
		func(cfg aws.Config) (backupaudit.API, error) { return backup.NewFromConfig(cfg), nil })
	if len(clients) == 0 {
		return nil
	}
	collector := backupaudit.New(clients, identity.ResourceARNs)
	collector.Collect(ctx)
	return collector.RunChecks(checks)
}

func (s *service) runLambda(ctx context.Context, sess *session.Session, identity model.AuditIdentity, selected map[string]bool) []model.Finding {
	checks := pick(selected, lambdaaudit.CheckNames())
	if len(checks) == 0 {
		return nil
	}
	clients := regional.BuildClients(sess.Cfg, s.catalog, identity, "awslambda", false,
		func(cfg aws.Config) (lambdaaudit.API, error) { return lambda.NewFromConfig(cfg), nil })
	if len(clients) == 0 {
		return nil
	}
	collector := lambdaaudit.New(clients, identity.ResourceARNs)
	collector.Collect(ctx)
	return collector.RunChecks(checks)
}

func (s *service) runEC2(ctx context.Context, sess *session.Session, identity model.AuditIdentity, selected map[string]bool) []model.Finding {
	checks := pick(selected, ec2audit.CheckNames())
	if len(checks) == 0 {
		return nil
	}
	clients := regional.BuildClients(sess.Cfg, s.catalog, identity, "ec2", false,
		func(cfg aws.Config) (ec2audit.API, error) { return ec2.NewFromConfig(cfg), nil })
	if len(clients) == 0 {
		return nil
	}
	collector := ec2audit.New(clients, identity.ResourceARNs, identity.Partition, identity.AccountID)
	collector.Collect(ctx)
	return collector.RunChecks(checks)
}

func (s *service) runRDS(ctx context.Context, sess *session.Session, identity model.AuditIdentity, selected map[string]bool) []model.Finding {
	checks := pick(selected, rdsaudit.CheckNames())
	if len(checks) == 0 {
		return nil
	}
	clients := regional.BuildClients(sess.Cfg, s.catalog, identity, "rds", false,
		func(cfg aws.Config) (rdsaudit.API, error) { return rds.NewFromConfig(cfg), nil })
	if len(clients) == 0 {
		return nil
	}
	collector := rdsaudit.New(clients, identity.ResourceARNs)
	collector.Collect(ctx)
	return collector.RunChecks(checks)
}

func (s *service) runELB(ctx context.Context, sess *session.Session, identity model.AuditIdentity, selected map[string]bool) []model.Finding {
	checks := pick(selected, elbaudit.CheckNames())
	if len(checks) == 0 {
		return nil
	}
	clients := regional.BuildClients(sess.Cfg, s.catalog, identity, "elb", false,
		func(cfg aws.Config) (elbaudit.API, error) { return elbv2.NewFromConfig(cfg), nil })
	if len(clients) == 0 {
		return nil
	}
	collector := elbaudit.New(clients, identity.ResourceARNs)
	collector.Collect(ctx)
	return collector.RunChecks(checks)
}

func (s *service) runRoute53(ctx context.Context, sess *session.Session, identity model.AuditIdentity, selected map[string]bool) []model.Finding {
	checks := pick(selected, dnsaudit.CheckNames())
	if len(checks) == 0 {
		return nil
	}
	clients := regional.BuildClients(sess.Cfg, s.catalog, identity, "route53", true,
		func(cfg aws.Config) (dnsaudit.API, error) { return route53.NewFromConfig(cfg), nil })
	if len(clients) == 0 {
		return nil
	}
	collector := dnsaudit.New(clients, identity.ResourceARNs)
	collector.Collect(ctx)
	return collector.RunChecks(checks)
}

func (s *service) storeRun(ctx context.Context, identity model.AuditIdentity, findings []model.Finding, startedAt time.Time) error {
	input := storage.SaveScanInput{
		AccountID:   identity.AccountID,
		Region:      firstOr(identity.Regions, "all"),
		DurationSec: int64(time.Since(startedAt).Seconds()),
		Version:     s.versionInfo.Version,
		Profile:     identity.Profile,
	}
	for _, f := range findings {
		input.Findings = append(input.Findings, storage.Finding{
			Check:          f.Check,
			Service:        f.Service,
			Severity:       f.Severity,
			Region:         f.Region,
			ResourceID:     f.ResourceID,
			ResourceARN:    f.ResourceARN,
			Description:    f.Description,
			Recommendation: f.Recommendation,
		})
	}
	_, err := s.storageService.SaveScan(ctx, input)
	return err
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 {
		return values[0]
	}
	return fallback
}
