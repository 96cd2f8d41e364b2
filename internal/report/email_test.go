// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/base64"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

type sentMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  []byte
}

func captureMail(t *testing.T, err error) *[]sentMail {
	t.Helper()
	var sent []sentMail
	old := sendMail
	sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr, a, from, to, msg})
		return err
	}
	t.Cleanup(func() { sendMail = old })
	return &sent
}

func mailConfig() types.EmailConfig {
	return types.EmailConfig{
		Enabled:    true,
		Host:       "smtp.example.com",
		Username:   "bot@example.com",
		Password:   "app-password",
		Recipients: []string{"reader@example.com, second@example.com", " "},
	}
}

func TestMailerSend(t *testing.T) {
	sent := captureMail(t, nil)
	html := "<html><body><h1>Daily AI Paper Report</h1><p>정확도 78.8%</p></body></html>"

	m := NewMailer(mailConfig())
	require.NoError(t, m.Send(Subject(generatedAt), html))
	require.Len(t, *sent, 1)

	got := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", got.addr)
	assert.NotNil(t, got.auth)
	assert.Equal(t, "bot@example.com", got.from, "from defaults to username")
	assert.Equal(t, []string{"reader@example.com", "second@example.com"}, got.to)

	headers, body, found := strings.Cut(string(got.msg), "\r\n\r\n")
	require.True(t, found)
	assert.Contains(t, headers, "Subject: Daily AI Paper Report - 2025-04-02\r\n")
	assert.Contains(t, headers, "To: reader@example.com, second@example.com\r\n")
	assert.Contains(t, headers, "Content-Type: text/html; charset=UTF-8")

	for _, line := range strings.Split(strings.TrimSpace(body), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body, "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, html, string(decoded))
}

func TestMailerSendError(t *testing.T) {
	captureMail(t, errors.New("535 authentication failed"))

	err := NewMailer(mailConfig()).Send("s", "<p>x</p>")
	assert.ErrorContains(t, err, "535 authentication failed")
}

func TestMailerNotConfigured(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*types.EmailConfig)
	}{
		{"no host", func(c *types.EmailConfig) { c.Host = "" }},
		{"no username", func(c *types.EmailConfig) { c.Username = "" }},
		{"no password", func(c *types.EmailConfig) { c.Password = "" }},
		{"no recipients", func(c *types.EmailConfig) { c.Recipients = []string{" "} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sent := captureMail(t, nil)
			cfg := mailConfig()
			tt.modify(&cfg)

			err := NewMailer(cfg).Send("s", "b")
			assert.ErrorIs(t, err, ErrMailerNotConfigured)
			assert.Empty(t, *sent)
		})
	}
}

func TestMailerExplicitFromAndPort(t *testing.T) {
	sent := captureMail(t, nil)
	cfg := mailConfig()
	cfg.From = "Daily Scholar <noreply@example.com>"
	cfg.Port = 2525

	require.NoError(t, NewMailer(cfg).Send("s", "b"))
	assert.Equal(t, "smtp.example.com:2525", (*sent)[0].addr)
	assert.Equal(t, "Daily Scholar <noreply@example.com>", (*sent)[0].from)
}
