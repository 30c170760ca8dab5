package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/KAsare1/Gymhub-server/config"
	"go.uber.org/zap"
)

const graphAPIBase = "https://graph.facebook.com"

var nonDigits = regexp.MustCompile(`\D`)

// WhatsAppSender delivers receipts through the WhatsApp Cloud API. A template message
// opens the conversation; the PDF follows as a document message.
type WhatsAppSender struct {
	cfg     config.WhatsAppConfig
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

func NewWhatsAppSender(cfg config.WhatsAppConfig, client *http.Client, logger *zap.Logger) *WhatsAppSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &WhatsAppSender{cfg: cfg, client: client, baseURL: graphAPIBase, logger: logger.With(zap.String("channel", "whatsapp"))}
}

func (s *WhatsAppSender) Channel() string { return "whatsapp" }

func (s *WhatsAppSender) SendReceipt(ctx context.Context, notice ReceiptNotice) error {
	to := nonDigits.ReplaceAllString(notice.Phone, "")
	if to == "" {
		return fmt.Errorf("whatsapp: client has no usable phone number")
	}

	err := s.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":     "hello_world",
			"language": map[string]string{"code": "en_US"},
		},
	})
	if err != nil {
		return fmt.Errorf("whatsapp template: %w", err)
	}

	// Outside the 24h customer window Meta rejects free-form media; the template already went out.
	err = s.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "document",
		"document": map[string]string{
			"link":     notice.ReceiptURL,
			"caption":  "Admission Receipt for " + notice.ClientName,
			"filename": "receipt.pdf",
		},
	})
	if err != nil {
		s.logger.Warn("receipt document not delivered", zap.String("to", to), zap.Error(err))
	}
	return nil
}

func (s *WhatsAppSender) post(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s/%s/messages", s.baseURL, s.cfg.APIVersion, s.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("graph api status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
