package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/xavierca1/consult-intake/internal/usecase"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var deliveryFailureTmpl = template.Must(template.ParseFS(templateFS, "templates/delivery_failure.html"))

func NewEmailSender(host string, port int, user, password, from string, to []string) *EmailSender {
	s := &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
	s.send = func(m *gomail.Message) error {
		return gomail.NewDialer(s.Host, s.Port, s.User, s.Password).DialAndSend(m)
	}
	return s
}

// SendDeliveryFailure mails operations about a submission the webhook never received.
func (s *EmailSender) SendDeliveryFailure(ctx context.Context, alert usecase.DeliveryFailureAlert) error {
	if len(s.To) == 0 {
		return fmt.Errorf("no alert recipients configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := renderDeliveryFailure(alert)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To...)
	m.SetHeader("Subject", fmt.Sprintf("[consultation] webhook delivery failed for %s", alert.SubmissionID))
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}

func renderDeliveryFailure(alert usecase.DeliveryFailureAlert) (string, error) {
	data := DeliveryFailureData{
		SubmissionID:   alert.SubmissionID,
		ClientName:     alert.ClientName,
		Email:          alert.Email,
		Phone:          alert.Phone,
		PrimaryService: alert.PrimaryService,
		Language:       alert.Language,
		Attempt:        alert.Attempt,
		Reason:         alert.Reason,
		OccurredAt:     alert.OccurredAt.UTC().Format(time.RFC1123),
	}

	var body bytes.Buffer
	if err := deliveryFailureTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render alert template: %w", err)
	}
	return body.String(), nil
}
