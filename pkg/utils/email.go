package utils

import (
	"bytes"
	"fmt"
	"html/template"
)

const companyName = "SwiftParcel"

// Common header for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #f97316; margin: 0;">{{.Company}}</h2>
		</div>
`

// Common footer for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>&copy; {{.Company}}. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

var paymentConfirmationTmpl = template.Must(template.New("payment_confirmation").Parse(emailHeader + `
		<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
			<h1 style="color: #2c3e50; text-align: center;">Thank you for your order</h1>
			<p>Hello {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
			<p>We received your payment of <strong>${{printf "%.2f" .Amount}}</strong>.</p>
			<h4>Your Transaction Id: <strong>{{.TransactionID}}</strong></h4>
			<p>We would like to get your feedback about the delivery.</p>
			<div style="text-align: center; margin: 30px 0;">
				<a href="{{.BaseURL}}/dashboard/payment-history" style="background-color: #f97316; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View payment history</a>
			</div>
			<p>Best regards,<br>The {{.Company}} Team</p>
		</div>` + emailFooter))

// PaymentEmail is the data a payment confirmation is rendered from.
type PaymentEmail struct {
	Name          string
	TransactionID string
	Amount        float64
	BaseURL       string
}

// RenderPaymentConfirmationEmail returns the subject and HTML body.
func RenderPaymentConfirmationEmail(data PaymentEmail) (string, string, error) {
	var body bytes.Buffer
	err := paymentConfirmationTmpl.Execute(&body, struct {
		PaymentEmail
		Company string
	}{data, companyName})
	if err != nil {
		return "", "", fmt.Errorf("render payment confirmation: %w", err)
	}
	return companyName + " Order Confirmation", body.String(), nil
}
