package orchestrator

import (
	"context"

	"github.com/thirukguru/aws-auditor/model"
	"github.com/thirukguru/aws-auditor/service/catalog"
	"github.com/thirukguru/aws-auditor/service/output"
	"github.com/thirukguru/aws-auditor/service/registry"
	"github.com/thirukguru/aws-auditor/service/scope"
	"github.com/thirukguru/aws-auditor/service/session"
	"github.com/thirukguru/aws-auditor/service/storage"
)

type service struct {
	catalog         *catalog.Catalog
	scopeService    scope.Service
	registryService registry.Service
	outputService   output.Service
	storageService  storage.Service
	versionInfo     model.VersionInfo
}

// Service is the interface for the audit orchestrator.
type Service interface {
	Orchestrate(ctx context.Context, sess *session.Session, identity model.AuditIdentity) error
}
