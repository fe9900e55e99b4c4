package email

import "hirehub_backend/internal/logger"

// NoopProvider используется, когда SMTP не сконфигурирован:
// письма логируются и отбрасываются
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider {
	return &NoopProvider{}
}

func (p *NoopProvider) Send(email *Email) error {
	logger.Debug("email dropped (no smtp configured)", "to", email.To, "subject", email.Subject)
	return nil
}

func (p *NoopProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	logger.Debug("email dropped (no smtp configured)", "to", to, "template", templateName)
	return nil
}

func (p *NoopProvider) Validate() error { return nil }

func (p *NoopProvider) Close() error { return nil }
