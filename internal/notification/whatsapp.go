package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/olimpofit/gym-server/internal/config"
	"github.com/olimpofit/gym-server/internal/errs"
	"github.com/olimpofit/gym-server/internal/pkg/httpretry"
	"github.com/olimpofit/gym-server/internal/pkg/logger"
)

const whatsappAPIBase = "https://graph.facebook.com/v17.0"

// WhatsAppChannel sends messages through the WhatsApp Business Cloud
// API. Without credentials, or when the provider call fails, it builds
// a user-invocable deep link instead and reports the attempt as not
// automatically completed; the link is carried in the error message so
// it lands in the audit record.
type WhatsAppChannel struct {
	token         string
	phoneNumberID string
	countryCode   string
	httpClient    httpretry.Doer
	apiBase       string
}

// NewWhatsAppChannel creates a WhatsApp channel. Provider calls are
// retried on transient failures.
func NewWhatsAppChannel(cfg config.WhatsAppConfig) *WhatsAppChannel {
	base := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	return &WhatsAppChannel{
		token:         cfg.Token,
		phoneNumberID: cfg.PhoneNumberID,
		countryCode:   cfg.DefaultCountryCode,
		httpClient:    httpretry.New(base, 3),
		apiBase:       whatsappAPIBase,
	}
}

// NormalizePhone converts a raw phone number into the digits-only form
// the provider requires: leading + and separators stripped, default
// country code prepended when missing.
func (c *WhatsAppChannel) NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "+")

	var digits strings.Builder
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// separator, dropped
		default:
			return "", errs.InvalidFormat("phone number %q contains invalid character %q", raw, r)
		}
	}

	number := digits.String()
	if number == "" {
		return "", errs.InvalidFormat("phone number %q has no digits", raw)
	}
	if !strings.HasPrefix(number, c.countryCode) {
		number = c.countryCode + number
	}
	return number, nil
}

// FallbackURL builds the deep link a user can open to send the message
// themselves when automatic delivery is unavailable.
func FallbackURL(number, message string) string {
	return fmt.Sprintf("https://api.whatsapp.com/send/?phone=%s&text=%s", number, url.QueryEscape(message))
}

// Send delivers a message via the Cloud API. The subject is ignored;
// WhatsApp messages have no subject line.
func (c *WhatsAppChannel) Send(ctx context.Context, recipient, _ string, message string) error {
	number, err := c.NormalizePhone(recipient)
	if err != nil {
		return err
	}

	if c.token == "" || c.phoneNumberID == "" {
		return errs.Provider(nil, "WhatsApp API not configured; manual send link: %s", FallbackURL(number, message))
	}

	if err := c.sendCloudAPI(ctx, number, message); err != nil {
		log.Printf("[WhatsApp] Provider send to %s failed: %v", logger.RedactPhone(number), err)
		return errs.Provider(err, "WhatsApp send failed; manual send link: %s", FallbackURL(number, message))
	}

	log.Printf("[WhatsApp] Sent to %s", logger.RedactPhone(number))
	return nil
}

func (c *WhatsAppChannel) sendCloudAPI(ctx context.Context, number, message string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                number,
		"type":              "text",
		"text":              map[string]string{"body": message},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/messages", c.apiBase, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp API returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
