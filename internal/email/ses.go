// Package email delivers transactional mail through SES. Provider errors are
// logged here and surfaced as an opaque upstream error.
package email

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"userhub/internal/config"
	apperrors "userhub/internal/errors"
)

// Sender abstracts outgoing mail for services and tests.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// SESSender sends plain-text mail through SES v2.
type SESSender struct {
	client *sesv2.Client
	sender string
	log    *slog.Logger
}

var _ Sender = (*SESSender)(nil)

// NewSESSender builds an SES client from config. When AWSEndpointURL is set
// the client targets it (localstack).
func NewSESSender(ctx context.Context, cfg *config.Config, log *slog.Logger) (*SESSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		}
	})

	return &SESSender{client: client, sender: cfg.EmailSender, log: log}, nil
}

// Send delivers a plain-text message to recipient.
func (s *SESSender) Send(ctx context.Context, recipient, subject, body string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		s.log.Error("ses send email", "recipient", recipient, "err", err)
		return apperrors.ErrUpstream
	}
	return nil
}
