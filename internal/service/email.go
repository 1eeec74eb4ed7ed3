package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/resend/resend-go/v2"
	"github.com/templui/drive/internal/markdown"
)

//go:embed emails/*.md
var emailFS embed.FS

var emailTemplates = template.Must(
	template.New("emails").
		Funcs(template.FuncMap{
			// yamlq escapes a value placed inside single-quoted front matter
			"yamlq": func(s string) string { return strings.ReplaceAll(s, "'", "''") },
		}).
		ParseFS(emailFS, "emails/*.md"),
)

// EmailData feeds the markdown templates under emails/
type EmailData struct {
	AppName        string
	RecipientEmail string
	RecipientName  string
	SharerName     string
	ResourceType   string
	ResourceName   string
	Role           string
	URL            string
}

type EmailService struct {
	client    *resend.Client
	parser    *markdown.Parser
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		parser:    markdown.NewParser(),
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

// SendShareNotification tells a grantee that something was shared with them
func (s *EmailService) SendShareNotification(ctx context.Context, data EmailData) error {
	return s.send(ctx, "share_created", data)
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	return s.send(ctx, "welcome", EmailData{
		RecipientEmail: email,
		RecipientName:  name,
		URL:            s.appURL,
	})
}

// render executes the named template and converts the result to HTML
func (s *EmailService) render(name string, data EmailData) (subject string, html string, err error) {
	if data.AppName == "" {
		data.AppName = s.appName
	}

	var source bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&source, name+".md", data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template %s: %w", name, err)
	}

	doc, err := s.parser.Render(source.Bytes())
	if err != nil {
		return "", "", fmt.Errorf("failed to render email template %s: %w", name, err)
	}

	subject = doc.String("subject")
	if subject == "" {
		subject = s.appName
	}
	return subject, string(doc.HTML), nil
}

func (s *EmailService) send(ctx context.Context, kind string, data EmailData) error {
	subject, html, err := s.render(kind, data)
	if err != nil {
		return err
	}

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", data.RecipientEmail, "subject", subject, "url", data.URL)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{data.RecipientEmail},
		Subject: subject,
		Html:    html,
	}

	_, err = s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", data.RecipientEmail)
	}
	return err
}
