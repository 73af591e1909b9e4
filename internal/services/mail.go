package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/arnold/blueprint-api/internal/config"
	"github.com/arnold/blueprint-api/internal/metrics"
	"github.com/arnold/blueprint-api/internal/models"
)

const (
	ResendEndpoint   = "https://api.resend.com/emails"
	SendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"
)

var ErrMailNotConfigured = errors.New("email service not configured")

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message through one provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// MailService sends confirmation emails through the configured provider.
type MailService struct {
	service string
	sender  Sender
	metrics *metrics.Metrics
}

// Global mail service instance
var Mail *MailService

// InitMail selects Resend or SendGrid from configuration. Without an API key
// the service stays disabled and every Send returns ErrMailNotConfigured.
func InitMail(cfg *config.Config) {
	Mail = NewMailService(cfg, &http.Client{Timeout: cfg.VendorTimeout})
}

func NewMailService(cfg *config.Config, client *http.Client) *MailService {
	service := strings.ToLower(cfg.EmailService)
	if service == "" {
		service = "resend"
	}
	m := &MailService{service: service, metrics: metrics.Default}

	switch service {
	case "resend":
		if cfg.ResendAPIKey == "" {
			log.Println("Mail: Missing RESEND_API_KEY, email disabled")
			return m
		}
		m.sender = &ResendSender{APIKey: cfg.ResendAPIKey, From: cfg.ResendFromEmail, Endpoint: ResendEndpoint, Client: client}
	default:
		if cfg.SendGridAPIKey == "" {
			log.Printf("Mail: Missing %s_API_KEY, email disabled", strings.ToUpper(service))
			return m
		}
		m.sender = &SendGridSender{APIKey: cfg.SendGridAPIKey, From: cfg.SendGridFromEmail, Endpoint: SendGridEndpoint, Client: client}
	}
	log.Printf("Mail: %s enabled", service)
	return m
}

// NewMailServiceWithSender wires an explicit sender.
func NewMailServiceWithSender(service string, sender Sender) *MailService {
	return &MailService{service: service, sender: sender, metrics: metrics.Default}
}

func (m *MailService) Service() string { return m.service }

func (m *MailService) Configured() bool { return m != nil && m.sender != nil }

// SendBlueprintReady sends the "blueprint is ready" email.
func (m *MailService) SendBlueprintReady(ctx context.Context, req models.SendEmailRequest) error {
	if !m.Configured() {
		return ErrMailNotConfigured
	}

	msg, err := RenderBlueprintReady(req)
	if err != nil {
		return err
	}

	err = m.sender.Send(ctx, msg)
	m.metrics.RecordEmail(m.service, err)
	if err != nil {
		log.Printf("Mail: failed to send to %s: %v", req.To, err)
		return err
	}
	log.Printf("Mail: sent blueprint email to %s", req.To)
	return nil
}

type ResendSender struct {
	APIKey   string
	From     string
	Endpoint string
	Client   *http.Client
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	payload := map[string]any{
		"from":    s.From,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
		"text":    msg.Text,
	}
	status, body, err := postJSON(ctx, s.Client, s.Endpoint, s.APIKey, payload)
	if err != nil {
		return fmt.Errorf("Resend API error: %w", err)
	}
	if status < 200 || status >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		detail := http.StatusText(status)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			detail = apiErr.Message
		}
		return fmt.Errorf("Resend API error: %s", detail)
	}
	return nil
}

type SendGridSender struct {
	APIKey   string
	From     string
	Endpoint string
	Client   *http.Client
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	payload := map[string]any{
		"personalizations": []map[string]any{{
			"to":      []map[string]string{{"email": msg.To}},
			"subject": msg.Subject,
		}},
		"from": map[string]string{"email": s.From},
		"content": []map[string]string{
			{"type": "text/plain", "value": msg.Text},
			{"type": "text/html", "value": msg.HTML},
		},
	}
	status, body, err := postJSON(ctx, s.Client, s.Endpoint, s.APIKey, payload)
	if err != nil {
		return fmt.Errorf("SendGrid API error: %w", err)
	}
	if status < 200 || status >= 300 {
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = http.StatusText(status)
		}
		return fmt.Errorf("SendGrid API error: %s", detail)
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, endpoint, apiKey string, payload any) (int, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}
