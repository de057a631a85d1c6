package email

import (
	"fmt"
)

// AccessRequestEmailData carries the fields rendered into consent emails.
type AccessRequestEmailData struct {
	PatientName  string
	Email        string
	ProviderName string
	Purpose      string
	DashboardURL string
	AppName      string
}

// BuildAccessRequestEmail notifies a patient that a provider asked to see
// their records.
func BuildAccessRequestEmail(data AccessRequestEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "MedVault"
	}

	name := data.PatientName
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("%s requested access to your medical records", data.ProviderName)

	textBody := fmt.Sprintf(`Hi %s,

%s has requested access to your medical records.

Reason given: %s

Review and approve or deny the request from your dashboard:
%s

Nothing is shared until you approve.

Thanks,
The %s Team`,
		name, data.ProviderName, data.Purpose, data.DashboardURL, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p><strong>%s</strong> has requested access to your medical records.</p>
    <p>Reason given: <em>%s</em></p>
    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Review Request</a>
    </p>
    <p style="color: #6b7280; font-size: 14px;">Nothing is shared until you approve.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		name, data.ProviderName, data.Purpose, data.DashboardURL, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// AppointmentEmailData carries the fields rendered into appointment emails.
type AppointmentEmailData struct {
	PatientName string
	Email       string
	DoctorName  string
	Hospital    string
	When        string
	AppName     string
}

// BuildAppointmentConfirmationEmail confirms a booked appointment.
func BuildAppointmentConfirmationEmail(data AppointmentEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "MedVault"
	}

	name := data.PatientName
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Appointment confirmed: %s, %s", data.DoctorName, data.When)

	textBody := fmt.Sprintf(`Hi %s,

Your appointment is confirmed.

Doctor:   %s
Location: %s
When:     %s

Thanks,
The %s Team`,
		name, data.DoctorName, data.Hospital, data.When, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #16a34a;">Hi %s,</h2>
    <p>Your appointment is confirmed.</p>
    <table style="border-collapse: collapse; margin: 20px 0;">
        <tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">Doctor</td><td style="padding: 4px 0;"><strong>%s</strong></td></tr>
        <tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">Location</td><td style="padding: 4px 0;">%s</td></tr>
        <tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">When</td><td style="padding: 4px 0;">%s</td></tr>
    </table>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		name, data.DoctorName, data.Hospital, data.When, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BillEmailData carries the fields rendered into billing emails.
type BillEmailData struct {
	PatientName string
	Email       string
	Description string
	Amount      string
	DueDate     string
	PayURL      string
	AppName     string
}

// BuildBillIssuedEmail notifies a patient that a new bill is payable.
func BuildBillIssuedEmail(data BillEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "MedVault"
	}

	name := data.PatientName
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("New bill: %s (%s due %s)", data.Description, data.Amount, data.DueDate)

	textBody := fmt.Sprintf(`Hi %s,

A new bill has been added to your account.

%s
Amount: %s
Due:    %s

Pay online:
%s

Thanks,
The %s Team`,
		name, data.Description, data.Amount, data.DueDate, data.PayURL, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>A new bill has been added to your account.</p>
    <p><strong>%s</strong></p>
    <p>Amount: <strong>%s</strong><br>Due: %s</p>
    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Pay Now</a>
    </p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		name, data.Description, data.Amount, data.DueDate, data.PayURL, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
