// Package whatsapp sends outbound text messages through the Meta WhatsApp
// Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/config"
	"dabachat_backend/platform/logger"
)

// Sender delivers a text message to a WhatsApp user.
type Sender interface {
	SendText(ctx context.Context, waID, text string) error
}

// Client is the Meta Graph API sender.
type Client struct {
	graphURL      string
	accessToken   string
	phoneNumberID string
	client        *http.Client
	logger        *logger.Logger
}

// NewClient builds the sender from the WhatsApp config.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	return &Client{
		graphURL:      strings.TrimRight(cfg.GetMetaGraphURL(), "/"),
		accessToken:   cfg.GetMetaAccessToken(),
		phoneNumberID: cfg.GetMetaPhoneNumberID(),
		client:        &http.Client{Timeout: 30 * time.Second},
		logger:        log,
	}
}

type textBody struct {
	Body string `json:"body"`
}

type sendPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

// SendText posts one text message to the Cloud API. The body is normalized
// to WhatsApp formatting first.
func (c *Client) SendText(ctx context.Context, waID, text string) error {
	payload := sendPayload{
		MessagingProduct: "whatsapp",
		To:               waID,
		Type:             "text",
		Text:             textBody{Body: FormatText(text)},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "whatsapp send: marshal payload", err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", c.graphURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "whatsapp send: build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WhatsAppEvent("outbound", waID, false, err.Error())
		return apperr.Wrap(apperr.KindUnavailable, "whatsapp send: cloud api unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		reason := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(snippet))
		c.logger.WhatsAppEvent("outbound", waID, false, reason)
		return apperr.Unavailable("whatsapp send failed: " + reason)
	}

	c.logger.WhatsAppEvent("outbound", waID, true, "")
	return nil
}

// FormatText converts the markdown the model tends to emit into WhatsApp
// formatting: **bold** becomes *bold*, markdown headers lose their hashes.
func FormatText(text string) string {
	text = strings.ReplaceAll(text, "**", "*")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "#") {
			lines[i] = "*" + strings.TrimSpace(strings.TrimLeft(trimmed, "#")) + "*"
		}
	}
	return strings.Join(lines, "\n")
}
