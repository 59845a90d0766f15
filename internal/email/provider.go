package email

import "context"

// Provider отправляет письма
type Provider interface {
	Send(ctx context.Context, email *Email) error

	// SendWithTemplate рендерит шаблон в HTMLBody и отправляет
	SendWithTemplate(ctx context.Context, templateName string, data TemplateData, email *Email) error
}

type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}
