package services

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/chachabrian/swiftparcel-backend/pkg/utils"
)

// PaymentNotification is everything the confirmation email needs.
type PaymentNotification struct {
	To            string  `json:"to"`
	Name          string  `json:"name,omitempty"`
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
}

type EmailSender interface {
	SendPaymentConfirmation(ctx context.Context, n PaymentNotification) error
}

// Mailer sends email through Resend. Without an API key it logs and skips.
type Mailer struct {
	client  *resend.Client
	from    string
	baseURL string
	logger  zerolog.Logger
}

func NewMailer(apiKey, sendingDomain, fromName, baseURL string, logger zerolog.Logger) *Mailer {
	m := &Mailer{
		from:    fmt.Sprintf("%s <noreply@%s>", fromName, sendingDomain),
		baseURL: baseURL,
		logger:  logger,
	}
	if apiKey != "" {
		m.client = resend.NewClient(apiKey)
	}
	return m
}

func (m *Mailer) SendPaymentConfirmation(ctx context.Context, n PaymentNotification) error {
	subject, html, err := utils.RenderPaymentConfirmationEmail(utils.PaymentEmail{
		Name:          n.Name,
		TransactionID: n.TransactionID,
		Amount:        n.Amount,
		BaseURL:       m.baseURL,
	})
	if err != nil {
		return errors.Wrap(err, "render payment confirmation")
	}

	if m.client == nil {
		m.logger.Debug().Str("to", n.To).Msg("email disabled, skipping payment confirmation")
		return nil
	}

	_, err = m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{n.To},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return errors.Wrapf(err, "send payment confirmation to %s", n.To)
	}
	return nil
}
