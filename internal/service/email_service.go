package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"studyquest/internal/logger"
	"studyquest/internal/models"
)

// sesAPI is the part of the SES client the email service calls
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// PendingDigest groups one student's outstanding claims for a reminder
type PendingDigest struct {
	Student models.User
	Claims  []models.Claim
}

// EmailService sends guardian notifications via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	log        *logger.Logger
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that logs and skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, log *logger.Logger) (*EmailService, error) {
	if fromEmail == "" {
		log.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, log: log}, nil
	}

	log.Debug("initializing email service", "region", awsRegion, "from", fromEmail, "base_url", appBaseURL)

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("email service enabled", "from", fromEmail, "region", awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		log:        log,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyClaimRequested tells a guardian that a student wants a reward
func (s *EmailService) NotifyClaimRequested(ctx context.Context, guardian, student *models.User, claim *models.Claim) error {
	if guardian.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("%s would like to redeem \"%s\"", student.Name, claim.RewardName)
	link := fmt.Sprintf("%s/claims/%s", s.appBaseURL, claim.ID)

	textBody := fmt.Sprintf(`Hi %s,

%s has asked to redeem "%s" for %d points and currently has %d points.

Review the request: %s

---
This is an automated email from StudyQuest. Please do not reply.
`, guardian.Name, student.Name, claim.RewardName, claim.Cost, student.Points, link)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi %s,</p>
	<p><strong>%s</strong> has asked to redeem <strong>%s</strong> for %d points and currently has %d points.</p>
	<p><a href="%s">Review the request</a></p>
	<p style="font-size: 12px; color: #666;">This is an automated email from StudyQuest. Please do not reply.</p>
</body>
</html>
`, html.EscapeString(guardian.Name), html.EscapeString(student.Name), html.EscapeString(claim.RewardName), claim.Cost, student.Points, link)

	return s.sendEmail(ctx, guardian.Email, subject, htmlBody, textBody)
}

// SendPendingClaimsReminder sends a guardian the digest of pending claims
func (s *EmailService) SendPendingClaimsReminder(ctx context.Context, guardian *models.User, digests []PendingDigest) error {
	if guardian.Email == "" || len(digests) == 0 {
		return nil
	}

	var text, rows strings.Builder
	total := 0
	for _, d := range digests {
		for _, c := range d.Claims {
			total++
			fmt.Fprintf(&text, "- %s: %s (%d points)\n", d.Student.Name, c.RewardName, c.Cost)
			fmt.Fprintf(&rows, "<li>%s: %s (%d points)</li>", html.EscapeString(d.Student.Name), html.EscapeString(c.RewardName), c.Cost)
		}
	}

	subject := fmt.Sprintf("%d reward request(s) waiting for you", total)
	textBody := fmt.Sprintf(`Hi %s,

These reward requests are still waiting for a decision:

%s
Review them at %s/claims

---
This is an automated email from StudyQuest. Please do not reply.
`, guardian.Name, text.String(), s.appBaseURL)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi %s,</p>
	<p>These reward requests are still waiting for a decision:</p>
	<ul>%s</ul>
	<p><a href="%s/claims">Review them</a></p>
</body>
</html>
`, html.EscapeString(guardian.Name), rows.String(), s.appBaseURL)

	return s.sendEmail(ctx, guardian.Email, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if !s.enabled {
		s.log.Debug("skipping email send, service disabled", "to", toEmail, "subject", subject)
		return nil
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
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
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}
	s.log.Info("email sent", "to", toEmail, "subject", subject, "message_id", messageID)
	return nil
}
