package sms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSConfig configures the AWS SNS sender.
type SNSConfig struct {
	Region string
	// AccessKeyID and SecretAccessKey are optional; the default credential chain applies when empty.
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the SNS endpoint (localstack and similar).
	Endpoint string
	// SenderID is shown as the sender where carriers support it.
	SenderID string
}

type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS sends transactional SMS through AWS SNS.
type SNS struct {
	client   snsPublisher
	senderID string
}

// NewSNS loads the AWS configuration and builds an SNS sender.
func NewSNS(ctx context.Context, cfg SNSConfig) (*SNS, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sms: load aws config: %w", err)
	}

	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &SNS{client: client, senderID: cfg.SenderID}, nil
}

// Send publishes message directly to phoneNumber.
func (s *SNS) Send(ctx context.Context, phoneNumber, message string) error {
	if phoneNumber == "" {
		return ErrNoRecipient
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phoneNumber),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sms: publish: %w", err)
	}

	return nil
}
