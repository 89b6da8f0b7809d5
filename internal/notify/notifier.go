// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	stderrors "skillforge/internal/common/errors"
	"skillforge/internal/common/logger"
	"skillforge/internal/models"
)

// SESService and SNSService are the AWS calls the notifier makes, narrowed
// for mocking.
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Config controls delivery channels.
type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	// SMSPriority is the minimum course priority that triggers an SMS.
	// Empty means high.
	SMSPriority models.CoursePriority
}

// Notifier tells an employee about a newly assigned course. Email goes out
// for every assignment; SMS only for assignments at or above the configured
// priority with a phone number on file.
type Notifier struct {
	config *Config
	ses    SESService
	sns    SNSService
	logger logger.Logger
}

func New(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config: config,
		ses:    sesClient,
		sns:    snsClient,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

func (n *Notifier) NotifyAssignment(ctx context.Context, employee *models.Employee, assignment *models.CourseAssignment) error {
	subject := fmt.Sprintf("New training assigned: %s", assignment.Spec.ModuleName)
	body := n.renderBody(employee, assignment)

	emailSent := false
	smsSent := false

	if n.config.EmailEnabled && employee.Email != "" {
		if err := n.sendEmail(ctx, employee.Email, subject, body); err != nil {
			n.logger.Error("email send failed", map[string]interface{}{
				"employeeId": employee.ID,
				"error":      err.Error(),
			})
			return stderrors.NewNotificationSendFailedError("email", err)
		}
		emailSent = true
	}

	if n.config.SMSEnabled && employee.Phone != "" && n.smsWorthy(assignment.Spec.PriorityLevel) {
		message := fmt.Sprintf("Hi %s, your %s (%d weeks) is ready in the learning portal.",
			firstName(employee.FullName), assignment.Spec.ModuleName, assignment.Spec.DurationWeeks)
		if err := n.sendSMS(ctx, employee.Phone, message); err != nil {
			n.logger.Error("SMS send failed", map[string]interface{}{
				"employeeId": employee.ID,
				"error":      err.Error(),
			})
			return stderrors.NewNotificationSendFailedError("sms", err)
		}
		smsSent = true
	}

	n.logger.Info("assignment notification delivered", map[string]interface{}{
		"employeeId":   employee.ID,
		"assignmentId": assignment.ID,
		"emailSent":    emailSent,
		"smsSent":      smsSent,
	})
	return nil
}

var priorityRank = map[models.CoursePriority]int{
	models.PriorityLow:    1,
	models.PriorityMedium: 2,
	models.PriorityHigh:   3,
}

func (n *Notifier) smsWorthy(priority models.CoursePriority) bool {
	threshold := n.config.SMSPriority
	if threshold == "" {
		threshold = models.PriorityHigh
	}
	return priorityRank[priority] >= priorityRank[threshold]
}

func (n *Notifier) renderBody(employee *models.Employee, assignment *models.CourseAssignment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", firstName(employee.FullName))
	fmt.Fprintf(&b, "A new training module has been assigned to you: %s.\n\n", assignment.Spec.ModuleName)
	fmt.Fprintf(&b, "%s\n\n", assignment.Spec.Description)
	fmt.Fprintf(&b, "Estimated effort: %d hours over %d weeks.\n", assignment.Spec.EstimatedHours, assignment.Spec.DurationWeeks)
	if len(assignment.Spec.FocusAreas) > 0 {
		fmt.Fprintf(&b, "Focus areas: %s.\n", strings.Join(assignment.Spec.FocusAreas, ", "))
	}
	b.WriteString("\nYou can start anytime from the learning portal.\n")
	return b.String()
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "there"
	}
	return parts[0]
}
