package awssts

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// CallerIdentity is the resolved principal of the account under audit.
type CallerIdentity struct {
	AccountID string
	ARN       string
	UserID    string
}

// STSClientAPI is the STS surface the identity lookup needs.
type STSClientAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type service struct {
	client STSClientAPI
}

// Service resolves which account and principal the session authenticates as.
type Service interface {
	CallerIdentity(ctx context.Context) (CallerIdentity, error)
}
