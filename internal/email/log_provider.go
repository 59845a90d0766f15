package email

import (
	"context"

	"jobportal_backend/internal/logger"
)

// LogProvider используется, когда SMTP не настроен: письмо только пишется в лог
type LogProvider struct {
	renderer TemplateRenderer
}

func NewLogProvider(renderer TemplateRenderer) *LogProvider {
	return &LogProvider{renderer: renderer}
}

func (p *LogProvider) Send(ctx context.Context, email *Email) error {
	logger.CtxInfo(ctx, "email transport not configured, logging message",
		"to", email.To,
		"subject", email.Subject,
		"body", email.Body,
	)
	return nil
}

func (p *LogProvider) SendWithTemplate(ctx context.Context, templateName string, data TemplateData, email *Email) error {
	if p.renderer != nil {
		html, err := p.renderer.Render(templateName, data)
		if err != nil {
			return err
		}
		email.HTMLBody = html
	}
	logger.CtxInfo(ctx, "email transport not configured, logging message",
		"to", email.To,
		"subject", email.Subject,
		"template", templateName,
	)
	return nil
}
