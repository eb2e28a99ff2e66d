// Package email sends transactional mail through Amazon SES.
//
// The service is deliberately optional: when SES_FROM_EMAIL is unset it
// constructs in a disabled state and every Send becomes a logged no-op,
// so local development never needs AWS credentials.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/sakif/giftwish/internal/recurrence"
)

const fromName = "Giftwish"

// Service sends email via Amazon SES, or silently drops it when
// disabled.
type Service struct {
	client    *sesv2.Client
	fromEmail string
	baseURL   string
	enabled   bool
	logger    *slog.Logger
}

// NewService creates the email service. An empty fromEmail yields a
// disabled service and no AWS config is loaded at all.
func NewService(ctx context.Context, fromEmail, baseURL string, logger *slog.Logger) (*Service, error) {
	if fromEmail == "" {
		logger.Info("email disabled: SES_FROM_EMAIL not configured")
		return &Service{enabled: false, logger: logger}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("email: loading AWS config: %w", err)
	}

	logger.Info("email enabled", slog.String("from", fromEmail))
	return &Service{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		baseURL:   baseURL,
		enabled:   true,
		logger:    logger,
	}, nil
}

// Enabled reports whether mail will actually be sent.
func (s *Service) Enabled() bool {
	return s.enabled
}

// SendFriendRequest notifies a user that someone wants to be friends.
func (s *Service) SendFriendRequest(ctx context.Context, toEmail, fromDisplayName string) error {
	subject := fmt.Sprintf("%s sent you a friend request on Giftwish", fromDisplayName)
	textBody := fmt.Sprintf(`Hi,

%s wants to be your friend on Giftwish. Accept the request to share
birthdays and coordinate gifts:

%s/friends

---
This is an automated email from Giftwish. Please do not reply.
`, fromDisplayName, s.baseURL)

	return s.send(ctx, toEmail, subject, textBody)
}

// SendBirthdayReminder mails a user their imminent birthdays. Called by
// the reminder job with today/tomorrow entries.
func (s *Service) SendBirthdayReminder(ctx context.Context, toEmail, toName string, entries []recurrence.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("  - %s (%s, %s)",
			e.PersonName, e.Kind, e.Next.Format("Jan 2")))
	}

	subject := fmt.Sprintf("Birthday reminder: %d coming up", len(entries))
	textBody := fmt.Sprintf(`Hi %s,

You have birthdays coming up:

%s

Check their wishlists: %s/birthdays

---
This is an automated email from Giftwish. Please do not reply.
`, toName, strings.Join(lines, "\n"), s.baseURL)

	return s.send(ctx, toEmail, subject, textBody)
}

func (s *Service) send(ctx context.Context, toEmail, subject, textBody string) error {
	if !s.enabled {
		s.logger.Debug("email skipped (service disabled)",
			slog.String("to", toEmail),
			slog.String("subject", subject),
		)
		return nil
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("email: sending to %s: %w", toEmail, err)
	}

	s.logger.Info("email sent",
		slog.String("to", toEmail),
		slog.String("subject", subject),
	)
	return nil
}
