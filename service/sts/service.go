// Package awssts resolves the account and principal a session authenticates
// as. Every finding and scan record is anchored to the account id it returns.
package awssts

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// NewService creates the caller-identity lookup over the session config.
func NewService(cfg aws.Config) Service {
	return &service{client: sts.NewFromConfig(cfg)}
}

func (s *service) CallerIdentity(ctx context.Context) (CallerIdentity, error) {
	out, err := s.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return CallerIdentity{}, fmt.Errorf("unable to resolve caller identity: %w", err)
	}

	return CallerIdentity{
		AccountID: aws.ToString(out.Account),
		ARN:       aws.ToString(out.Arn),
		UserID:    aws.ToString(out.UserId),
	}, nil
}
