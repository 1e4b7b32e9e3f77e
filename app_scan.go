package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/thirukguru/aws-auditor/model"
	"github.com/thirukguru/aws-auditor/service/catalog"
	"github.com/thirukguru/aws-auditor/service/orchestrator"
	"github.com/thirukguru/aws-auditor/service/output"
	"github.com/thirukguru/aws-auditor/service/registry"
	"github.com/thirukguru/aws-auditor/service/scope"
	"github.com/thirukguru/aws-auditor/service/session"
	"github.com/thirukguru/aws-auditor/service/storage"
	awssts "github.com/thirukguru/aws-auditor/service/sts"
	"github.com/thirukguru/aws-auditor/shared/spinner"
)

func runAudit(flags model.Flags, versionInfo model.VersionInfo, storageService storage.Service) error {
	ctx := context.Background()

	identity := buildIdentity(flags)

	sessionService := session.NewService()
	sess, err := sessionService.Establish(ctx, identity)
	if err != nil {
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("cannot start audit: %w", err)
		}
		return fmt.Errorf("failed to establish session: %w", err)
	}

	if flags.Output != "json" {
		spinner.StartSpinner()
		defer spinner.StopSpinner()
	}

	stsService := awssts.NewService(sess.Cfg)
	caller, err := stsService.CallerIdentity(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve caller identity: %w", err)
	}
	identity.AccountID = caller.AccountID

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load service region catalog: %w", err)
	}

	registryService := registry.NewService()
	scopeService := scope.NewService(registryService)
	outputService := output.NewService(flags.Output, os.Stdout)

	orchestratorService := orchestrator.NewService(
		cat,
		scopeService,
		registryService,
		outputService,
		storageService,
		versionInfo,
	)

	return orchestratorService.Orchestrate(ctx, sess, identity)
}

func buildIdentity(flags model.Flags) model.AuditIdentity {
	identity := model.AuditIdentity{
		Partition:     flags.Partition,
		Profile:       flags.Profile,
		ProfileRegion: flags.Region,
		Regions:       flags.Regions,
		ResourceARNs:  flags.ResourceARNs,
	}

	if flags.RoleARN != "" {
		identity.AssumedRole = &model.AssumedRoleDescriptor{
			RoleARN:         flags.RoleARN,
			ExternalID:      flags.ExternalID,
			DurationSeconds: flags.SessionDuration,
		}
	}

	return identity
}
