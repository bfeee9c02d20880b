package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome email sent after registration.
type WelcomeEmailData struct {
	Email       string
	DisplayName string
	AppURL      string
}

// CollaboratorInvitationEmailData holds data for the email sent when someone is
// invited to (or re-invited to) an event.
type CollaboratorInvitationEmailData struct {
	Email       string
	InviteeName string
	InviterName string
	EventName   string
	Role        Role
	EventURL    string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendCollaboratorInvitation(ctx context.Context, data *CollaboratorInvitationEmailData) error
}
