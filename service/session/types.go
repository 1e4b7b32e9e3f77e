package session

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/thirukguru/aws-auditor/model"
)

// Session is the authenticated handle every regional client is built from.
// Cfg carries the credential provider; for assumed-role audits that provider
// refreshes itself transparently on expiry.
type Session struct {
	Cfg aws.Config
	// ProfileRegion is the default region the credential chain resolved,
	// used to pick the representative region for global services.
	ProfileRegion string
}

// AuthError is an unrecoverable setup failure: no usable identity, or a
// failed initial role assumption. Callers terminate the process on it.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (%s): %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RefreshError is a failed credential refresh exchange. It propagates to the
// in-flight API caller; retry policy belongs to the transport, not to us.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("credential refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// AssumeRoleAPI is the STS surface the manager needs for role assumption.
type AssumeRoleAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

type service struct {
	// Both are swapped in tests to avoid touching the real credential
	// chain or STS.
	loadConfig   func(ctx context.Context, identity model.AuditIdentity) (aws.Config, error)
	newSTSClient func(cfg aws.Config) AssumeRoleAPI
}

// Service is the interface for the credential session manager.
type Service interface {
	Establish(ctx context.Context, identity model.AuditIdentity) (*Session, error)
}
