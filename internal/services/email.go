package services

import (
	"context"
	"fmt"
	"log"

	"techconnect/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendInviteCode sends an invite-code email using the "invite" template.
func (s *emailService) SendInviteCode(ctx context.Context, data *domain.InviteEmailData) error {
	if data == nil {
		return fmt.Errorf("invite email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("invite", data)
	if err != nil {
		return fmt.Errorf("failed to render invite template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send invite email: %w", err)
	}
	log.Printf("[EMAIL] Invite code sent to %s", data.Email)
	return nil
}
