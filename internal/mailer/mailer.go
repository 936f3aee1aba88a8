// Package mailer delivers transactional email through the Brevo HTTP
// API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/flashmind/flashmind-backend/internal/config"
)

const defaultEndpoint = "https://api.brevo.com/v3/smtp/email"

// Brevo sends email through Brevo's transactional API.
type Brevo struct {
	cfg      *config.Config
	client   *http.Client
	endpoint string
	log      zerolog.Logger
}

// NewBrevo creates a Brevo mailer using the configured sender identity.
func NewBrevo(cfg *config.Config, log zerolog.Logger) *Brevo {
	return &Brevo{
		cfg:      cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: defaultEndpoint,
		log:      log,
	}
}

type address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      address   `json:"sender"`
	To          []address `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

// SendVerificationEmail mails the account activation link.
func (b *Brevo) SendVerificationEmail(ctx context.Context, toEmail, username, token string) error {
	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s", b.cfg.BaseURL, token)
	body := fmt.Sprintf(`<html><body>
<h2>Bienvenue sur FlashMind, %s !</h2>
<p>Merci de vous &ecirc;tre inscrit. Cliquez sur le lien ci-dessous pour activer votre compte&nbsp;:</p>
<p><a href="%s">Activer mon compte</a></p>
<p>Ce lien expire dans 24 heures.</p>
<p>Si vous n'&ecirc;tes pas &agrave; l'origine de cette inscription, ignorez ce message.</p>
</body></html>`, username, link)

	return b.send(ctx, toEmail, "Activez votre compte FlashMind", body)
}

// SendPasswordResetEmail mails the password reset link.
func (b *Brevo) SendPasswordResetEmail(ctx context.Context, toEmail, username, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", b.cfg.FrontendURL, token)
	body := fmt.Sprintf(`<html><body>
<h2>Bonjour %s,</h2>
<p>Vous avez demand&eacute; la r&eacute;initialisation de votre mot de passe. Cliquez sur le lien ci-dessous pour en choisir un nouveau&nbsp;:</p>
<p><a href="%s">R&eacute;initialiser mon mot de passe</a></p>
<p>Ce lien expire dans 1 heure.</p>
<p>Si vous n'avez pas fait cette demande, ignorez ce message.</p>
</body></html>`, username, link)

	return b.send(ctx, toEmail, "Réinitialisation de votre mot de passe FlashMind", body)
}

func (b *Brevo) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	payload, err := json.Marshal(sendRequest{
		Sender:      address{Name: b.cfg.SenderName, Email: b.cfg.SenderEmail},
		To:          []address{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", b.cfg.BrevoAPIKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("brevo responded %d: %s", resp.StatusCode, detail)
	}

	b.log.Debug().Str("to", toEmail).Str("subject", subject).Msg("email sent")
	return nil
}
