// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// ErrMailerNotConfigured is returned when SMTP credentials or recipients
// are missing.
var ErrMailerNotConfigured = errors.New("email not configured: host, username, password and recipients are required")

// sendMail delivers a message. smtp.SendMail upgrades with STARTTLS when the
// server offers it. Tests replace this var.
var sendMail = smtp.SendMail

// Mailer sends HTML reports over SMTP to a fixed recipient list.
type Mailer struct {
	cfg types.EmailConfig
}

// NewMailer returns a Mailer for cfg. From defaults to the username and the
// port to 587.
func NewMailer(cfg types.EmailConfig) *Mailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg}
}

// Check reports ErrMailerNotConfigured when the mailer cannot send.
func (m *Mailer) Check() error {
	if m.cfg.Host == "" || m.cfg.Username == "" || m.cfg.Password == "" || len(recipients(m.cfg.Recipients)) == 0 {
		return ErrMailerNotConfigured
	}
	return nil
}

// Send delivers one HTML message with PLAIN auth.
func (m *Mailer) Send(subject, html string) error {
	if err := m.Check(); err != nil {
		return err
	}
	to := recipients(m.cfg.Recipients)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := sendMail(addr, auth, m.cfg.From, to, buildMessage(m.cfg.From, to, subject, html)); err != nil {
		return fmt.Errorf("sending email via %s: %w", addr, err)
	}
	return nil
}

func recipients(list []string) []string {
	var out []string
	for _, r := range list {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// buildMessage assembles an RFC 5322 message with a base64 HTML body.
func buildMessage(from string, to []string, subject, html string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")

	enc := base64.StdEncoding.EncodeToString([]byte(html))
	for len(enc) > 76 {
		b.WriteString(enc[:76] + "\r\n")
		enc = enc[76:]
	}
	if enc != "" {
		b.WriteString(enc + "\r\n")
	}
	return b.Bytes()
}
