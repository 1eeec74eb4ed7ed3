package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailService_RenderShareNotification(t *testing.T) {
	s := NewEmailService("", "noreply@example.com", "https://drive.example.com", "Drive", true)

	subject, html, err := s.render("share_created", EmailData{
		RecipientEmail: "bob@example.com",
		RecipientName:  "Bob",
		SharerName:     "Alice",
		ResourceType:   "folder",
		ResourceName:   "Bob's <b>Docs</b>",
		Role:           "viewer",
		URL:            "https://drive.example.com/folders/f1",
	})
	require.NoError(t, err)

	assert.Equal(t, `Alice shared "Bob's <b>Docs</b>" with you`, subject)
	assert.Contains(t, html, `href="https://drive.example.com/folders/f1"`)
	assert.Contains(t, html, "Open in Drive")
	assert.NotContains(t, html, "<b>Docs</b>", "raw html in names is not rendered")
}

func TestEmailService_DevModeLogsInsteadOfSending(t *testing.T) {
	s := NewEmailService("re_test", "noreply@example.com", "https://drive.example.com", "Drive", true)
	assert.Nil(t, s.client)

	err := s.SendWelcomeEmail(context.Background(), "alice@example.com", "Alice")
	assert.NoError(t, err)
}

func TestEmailService_UnconfiguredProduction(t *testing.T) {
	s := NewEmailService("", "noreply@example.com", "https://drive.example.com", "Drive", false)

	err := s.SendWelcomeEmail(context.Background(), "alice@example.com", "Alice")
	assert.Error(t, err)
}
