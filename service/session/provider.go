package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/thirukguru/aws-auditor/model"
)

// refreshWindow treats credentials expiring within it as already expired so a
// long pagination run does not start on a token about to lapse.
const refreshWindow = 2 * time.Minute

// assumeRoleProvider implements aws.CredentialsProvider over a repeated STS
// AssumeRole exchange. The SDK transport calls Retrieve before outbound
// requests; a valid cached credential is returned without any network call.
// The mutex guarantees a single in-flight refresh: concurrent callers block
// on it and then reuse the freshly cached result.
type assumeRoleProvider struct {
	api  AssumeRoleAPI
	role model.AssumedRoleDescriptor

	mu    sync.Mutex
	creds aws.Credentials
	now   func() time.Time
}

func newAssumeRoleProvider(api AssumeRoleAPI, role model.AssumedRoleDescriptor) *assumeRoleProvider {
	return &assumeRoleProvider{api: api, role: role, now: time.Now}
}

func (p *assumeRoleProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.creds.HasKeys() && p.now().Add(refreshWindow).Before(p.creds.Expires) {
		return p.creds, nil
	}

	creds, err := p.exchange(ctx)
	if err != nil {
		return aws.Credentials{}, &RefreshError{Err: err}
	}
	if !creds.Expires.After(p.now()) {
		return aws.Credentials{}, &RefreshError{
			Err: fmt.Errorf("exchange returned already-expired credentials (expiry %s)", creds.Expires),
		}
	}

	p.creds = creds
	return p.creds, nil
}

func (p *assumeRoleProvider) exchange(ctx context.Context) (aws.Credentials, error) {
	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(p.role.RoleARN),
		RoleSessionName: aws.String(sessionName),
		DurationSeconds: aws.Int32(p.role.DurationSeconds),
	}
	if p.role.ExternalID != "" {
		input.RoleSessionName = aws.String(sessionNameExternal)
		input.ExternalId = aws.String(p.role.ExternalID)
	}

	out, err := p.api.AssumeRole(ctx, input)
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("sts assume role %s: %w", p.role.RoleARN, err)
	}
	if out.Credentials == nil || out.Credentials.Expiration == nil {
		return aws.Credentials{}, fmt.Errorf("sts assume role %s returned no credentials", p.role.RoleARN)
	}

	return aws.Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Source:          "AssumeRoleProvider",
		CanExpire:       true,
		Expires:         *out.Credentials.Expiration,
	}, nil
}
