package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/olimpofit/gym-server/internal/config"
	"github.com/olimpofit/gym-server/internal/errs"
	"github.com/olimpofit/gym-server/internal/pkg/logger"
)

// SESChannel sends email via AWS SES using the SDK v2.
type SESChannel struct {
	fromEmail string
	fromName  string
	timeout   time.Duration
	client    *sesv2.Client
}

// NewSESChannel creates an email channel. The SDK client is only
// initialized when credentials are present; sends without a client
// fail with a provider error.
func NewSESChannel(cfg config.SESConfig) *SESChannel {
	ch := &SESChannel{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		)
		if err != nil {
			log.Printf("[SES] Warning: Failed to initialize AWS config: %v", err)
		} else {
			ch.client = sesv2.NewFromConfig(awsCfg)
		}
	}

	return ch
}

// Send delivers a single email through AWS SES.
func (c *SESChannel) Send(ctx context.Context, recipient, subject, message string) error {
	if c.client == nil {
		return errs.Provider(nil, "SES client not initialized - check credentials")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	from := c.fromEmail
	if c.fromName != "" {
		from = fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{recipient}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(message), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	result, err := c.client.SendEmail(ctx, input)
	if err != nil {
		log.Printf("[SES] Failed to send to %s: %v", logger.RedactEmail(recipient), err)
		return errs.Provider(err, "SES send failed")
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}
	log.Printf("[SES] Sent to %s (id: %s)", logger.RedactEmail(recipient), messageID)
	return nil
}
