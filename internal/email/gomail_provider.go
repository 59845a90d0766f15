package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/ecodeclub/ekit/retry"
	"gopkg.in/gomail.v2"
)

var ErrRetriesExhausted = errors.New("email: retries exhausted")

// dialer - то, что нужно от *gomail.Dialer; в тестах подменяется
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// GomailProvider отправляет письма через SMTP и повторяет неудачные попытки с backoff
type GomailProvider struct {
	cfg      *SMTPConfig
	dialer   dialer
	renderer TemplateRenderer
}

func NewGomailProvider(cfg *SMTPConfig, renderer TemplateRenderer) *GomailProvider {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	}
	return newGomailProvider(cfg, d, renderer)
}

func newGomailProvider(cfg *SMTPConfig, d dialer, renderer TemplateRenderer) *GomailProvider {
	return &GomailProvider{cfg: cfg, dialer: d, renderer: renderer}
}

func (p *GomailProvider) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return errors.New("email: no recipients")
	}

	msg := p.buildMessage(email)
	strategy, err := retry.NewExponentialBackoffRetryStrategy(p.cfg.RetryInitialInterval, p.cfg.RetryMaxInterval, p.cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("email: retry strategy: %w", err)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		err := p.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		interval, ok := strategy.Next()
		if !ok {
			return fmt.Errorf("%w: %v", ErrRetriesExhausted, err)
		}
		if timer == nil {
			timer = time.NewTimer(interval)
		} else {
			timer.Reset(interval)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *GomailProvider) SendWithTemplate(ctx context.Context, templateName string, data TemplateData, email *Email) error {
	if p.renderer == nil {
		return errors.New("email: template renderer is not configured")
	}
	html, err := p.renderer.Render(templateName, data)
	if err != nil {
		return err
	}
	email.HTMLBody = html
	return p.Send(ctx, email)
}

func (p *GomailProvider) buildMessage(email *Email) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.cfg.FromEmail, p.cfg.FromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)

	switch {
	case email.Body != "" && email.HTMLBody != "":
		m.SetBody("text/plain", email.Body)
		m.AddAlternative("text/html", email.HTMLBody)
	case email.HTMLBody != "":
		m.SetBody("text/html", email.HTMLBody)
	default:
		m.SetBody("text/plain", email.Body)
	}
	return m
}
