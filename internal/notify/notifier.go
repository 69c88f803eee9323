// Package notify delivers price-drop alert emails through Resend or plain
// SMTP. Dispatch never fails a tracking run: every outcome, including
// misconfiguration, is reported in the AlertResult instead of an error.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"sort"
	"strings"

	"github.com/eddychk/viagoscrap/internal/httputil"
	"github.com/eddychk/viagoscrap/internal/models"
)

const resendAPIURL = "https://api.resend.com/emails"

// Config selects the delivery provider and its credentials.
type Config struct {
	Provider       string // "resend" (default) or "smtp"
	ResendAPIKey   string
	FromEmail      string
	DefaultToEmail string // always added to the recipient set when set
	DashboardURL   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
}

// Notifier sends price-drop emails.
type Notifier struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
	apiURL string // overridable in tests
}

func New(cfg Config, logger *slog.Logger) *Notifier {
	if cfg.DashboardURL == "" {
		cfg.DashboardURL = "http://127.0.0.1:8000"
	}
	return &Notifier{cfg: cfg, client: httputil.NewHTTPClient(nil), logger: logger, apiURL: resendAPIURL}
}

// SendPriceDrop emails the recipients that a new minimum price was seen.
// It never returns an error; delivery failures come back as an unsent
// result with a reason.
func (n *Notifier) SendPriceDrop(ctx context.Context, eventName, eventURL string, oldPrice, newPrice float64, currency string, recipients []string) *models.AlertResult {
	to := n.cleanRecipients(recipients)
	if len(to) == 0 {
		return &models.AlertResult{Sent: false, Reason: "no_recipients"}
	}

	subject, body := n.buildEmail(eventName, eventURL, oldPrice, newPrice, currency)

	var res *models.AlertResult
	if strings.EqualFold(n.cfg.Provider, "smtp") {
		res = n.sendSMTP(to, subject, body)
	} else {
		res = n.sendResend(ctx, to, subject, body)
	}
	if n.logger != nil {
		n.logger.Info("price drop alert dispatched",
			"event", eventName, "sent", res.Sent, "reason", res.Reason,
			"recipients", len(to))
	}
	return res
}

// cleanRecipients lower-cases, trims, adds the default alert address, and
// dedupes into a sorted list.
func (n *Notifier) cleanRecipients(recipients []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(addr string) {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true
		out = append(out, addr)
	}
	for _, r := range recipients {
		add(r)
	}
	add(n.cfg.DefaultToEmail)
	sort.Strings(out)
	return out
}

func (n *Notifier) buildEmail(eventName, eventURL string, oldPrice, newPrice float64, currency string) (subject, html string) {
	subject = fmt.Sprintf("[ViagoScrap] Nouveau prix minimum: %.2f %s", newPrice, currency)
	html = fmt.Sprintf(`
	<h2>Nouveau prix minimum detecte</h2>
	<p><strong>Event:</strong> %s</p>
	<p><strong>Ancien min:</strong> %.2f %s</p>
	<p><strong>Nouveau min:</strong> %.2f %s</p>
	<p><a href="%s">Voir la page</a></p>
	<p><a href="%s">Ouvrir le dashboard</a></p>
	`, eventName, oldPrice, currency, newPrice, currency, eventURL, n.cfg.DashboardURL)
	return subject, html
}

func (n *Notifier) sendResend(ctx context.Context, to []string, subject, html string) *models.AlertResult {
	if n.cfg.ResendAPIKey == "" || n.cfg.FromEmail == "" {
		return &models.AlertResult{Sent: false, Reason: "resend_not_configured"}
	}

	payload, err := json.Marshal(map[string]any{
		"from":    n.cfg.FromEmail,
		"to":      to,
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return &models.AlertResult{Sent: false, Reason: "provider_error"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(payload))
	if err != nil {
		return &models.AlertResult{Sent: false, Reason: "provider_error"}
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.ResendAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(n.client, req, 2)
	if err != nil {
		return &models.AlertResult{Sent: false, Reason: "provider_error"}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := httputil.ReadBody(resp)
		return &models.AlertResult{
			Sent:   false,
			Reason: fmt.Sprintf("provider_error: status %d: %s", resp.StatusCode, string(body)),
		}
	}
	return &models.AlertResult{Sent: true, Provider: "resend", Recipients: to}
}

func (n *Notifier) sendSMTP(to []string, subject, html string) *models.AlertResult {
	cfg := n.cfg
	if cfg.SMTPHost == "" || cfg.SMTPUsername == "" || cfg.SMTPPassword == "" || cfg.FromEmail == "" {
		return &models.AlertResult{Sent: false, Reason: "smtp_not_configured"}
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", cfg.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	c, err := smtp.Dial(addr)
	if err != nil {
		return &models.AlertResult{Sent: false, Reason: "provider_error: " + err.Error()}
	}
	defer c.Close()

	if cfg.SMTPUseTLS {
		if err := c.StartTLS(&tls.Config{ServerName: cfg.SMTPHost}); err != nil {
			return &models.AlertResult{Sent: false, Reason: "provider_error: " + err.Error()}
		}
	}
	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	if err := c.Auth(auth); err != nil {
		return &models.AlertResult{Sent: false, Reason: "provider_error: " + err.Error()}
	}
	if err := c.Mail(cfg.FromEmail); err != nil {
		return &models.AlertResult{Sent: false, Reason: "provider_error: " + err.Error()}
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return &models.AlertResult{Sent: false, Reason: "provider_error: " + err.Error()}
		}
	}
	w, err := c.Data()
	if err != nil {
		return &models.AlertResult{Sent: false, Reason: "provider_error: " + err.Error()}
	}
	if _, err := w.Write([]byte(msg.String())); err != nil {
		return &models.AlertResult{Sent: false, Reason: "provider_error: " + err.Error()}
	}
	if err := w.Close(); err != nil {
		return &models.AlertResult{Sent: false, Reason: "provider_error: " + err.Error()}
	}
	_ = c.Quit()

	return &models.AlertResult{Sent: true, Provider: "smtp", Recipients: to}
}
