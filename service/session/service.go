// Package session owns the authenticated AWS session and its credential
// lifecycle, including transparent refresh of assumed-role credentials.
package session

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/thirukguru/aws-auditor/model"
)

// Session names differ with and without an external id; the two represent
// distinct trust-boundary callers.
const (
	sessionName         = "aws-auditor-session"
	sessionNameExternal = "aws-auditor-external-session"
)

// NewService creates a new credential session manager.
func NewService() Service {
	s := &service{
		newSTSClient: func(cfg aws.Config) AssumeRoleAPI {
			return sts.NewFromConfig(cfg)
		},
	}
	s.loadConfig = s.loadBaseConfig
	return s
}

// Establish builds the authenticated session for the identity. Without an
// assumed-role descriptor it adopts the named profile (or the ambient default
// chain); with one it performs the role-assumption exchange eagerly and wires
// a self-refreshing credential provider into the returned config. Both
// failure modes here are fatal: a missing local profile or a rejected initial
// assumption cannot self-heal, so there is no retry.
func (s *service) Establish(ctx context.Context, identity model.AuditIdentity) (*Session, error) {
	cfg, err := s.loadConfig(ctx, identity)
	if err != nil {
		return nil, &AuthError{Reason: "no usable identity", Err: err}
	}

	if identity.AssumedRole == nil {
		return &Session{Cfg: cfg, ProfileRegion: cfg.Region}, nil
	}

	provider := newAssumeRoleProvider(s.newSTSClient(cfg), *identity.AssumedRole)
	if _, err := provider.Retrieve(ctx); err != nil {
		return nil, &AuthError{Reason: "initial role assumption failed", Err: err}
	}

	cfg.Credentials = provider
	return &Session{Cfg: cfg, ProfileRegion: cfg.Region}, nil
}

func (s *service) loadBaseConfig(ctx context.Context, identity model.AuditIdentity) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if identity.ProfileRegion != "" {
		opts = append(opts, config.WithRegion(identity.ProfileRegion))
	}
	if identity.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(identity.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS config: %w", err)
	}

	// Force credential resolution now so an unusable identity fails here
	// instead of mid-collection.
	if cfg.Credentials != nil {
		if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
			return aws.Config{}, fmt.Errorf("failed to retrieve credentials: %w", err)
		}
	}

	return cfg, nil
}
