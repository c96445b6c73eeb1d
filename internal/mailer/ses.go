package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/svsu-dev/samadhan/internal/config"
	"github.com/svsu-dev/samadhan/internal/pkg/logger"
)

// Sender delivers the composed letter directly through AWS SES. Optional:
// when not configured, students send from their own mail client via the
// compose links. A send failure never fails a submission.
type Sender struct {
	client *sesv2.Client
	from   string
}

// NewSender creates an SES v2 sender. Static credentials come from config;
// when empty, the default AWS credential chain applies.
func NewSender(ctx context.Context, cfg appconfig.SESConfig) (*Sender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	logger.Info("ses sender initialized", "region", cfg.Region, "from", cfg.From)
	return &Sender{client: sesv2.NewFromConfig(awsCfg), from: cfg.From}, nil
}

// Send delivers the message as plain text.
func (s *Sender) Send(ctx context.Context, m Message) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses:  m.To,
			CcAddresses:  m.CC,
			BccAddresses: m.BCC,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(m.Subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(m.Body)},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
