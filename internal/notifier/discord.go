package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/classbell/pkg/errors"
)

// Discord caps embed payloads well below this; anything larger in a create
// response is not the message object we asked for.
const maxCreateResponseBytes = 8 * 1024

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// WebhookChannel implements Channel against a Discord webhook. Create posts
// with ?wait=true so Discord returns the message object, update patches the
// message, delete expects 204.
type WebhookChannel struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookChannel constructs a WebhookChannel. Every call is bounded by
// timeout; a timed-out call is treated like any other channel failure.
func NewWebhookChannel(url string, timeout time.Duration, logger *zap.Logger) *WebhookChannel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookChannel{
		url:    strings.TrimSuffix(url, "/"),
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Create posts a new notification and returns Discord's message id. An
// oversized response body is not parsed: the notification was still sent, so
// Create reports success with an empty id.
func (c *WebhookChannel) Create(ctx context.Context, content Content) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, c.url+"?wait=true", content)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", appErrors.Wrap(fmt.Errorf("status %d", resp.StatusCode), appErrors.ErrChannel.Code, resp.StatusCode, "webhook create failed")
	}

	if resp.ContentLength > maxCreateResponseBytes {
		return "", nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCreateResponseBytes+1))
	if err != nil || len(body) > maxCreateResponseBytes {
		return "", nil
	}

	var message struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &message); err != nil {
		c.logger.Debug("unparseable create response", zap.Error(err))
		return "", nil
	}
	return message.ID, nil
}

// Update edits an existing notification in place.
func (c *WebhookChannel) Update(ctx context.Context, messageID string, content Content) error {
	resp, err := c.do(ctx, http.MethodPatch, c.url+"/messages/"+messageID, content)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return appErrors.Wrap(fmt.Errorf("status %d", resp.StatusCode), appErrors.ErrChannel.Code, resp.StatusCode, "webhook update failed")
	}
	return nil
}

// Delete retracts a notification. Discord answers 204 on success.
func (c *WebhookChannel) Delete(ctx context.Context, messageID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url+"/messages/"+messageID, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrChannel.Code, appErrors.ErrChannel.Status, "webhook delete request failed")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrChannel.Code, appErrors.ErrChannel.Status, "webhook delete failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return appErrors.Wrap(fmt.Errorf("status %d", resp.StatusCode), appErrors.ErrChannel.Code, resp.StatusCode, "webhook delete failed")
	}
	return nil
}

func (c *WebhookChannel) do(ctx context.Context, method, url string, content Content) (*http.Response, error) {
	payload, err := json.Marshal(discordPayload{Embeds: []discordEmbed{{Title: content.Title, Description: content.Description}}})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrChannel.Code, appErrors.ErrChannel.Status, "failed to encode webhook payload")
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrChannel.Code, appErrors.ErrChannel.Status, "failed to build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrChannel.Code, appErrors.ErrChannel.Status, "webhook call failed")
	}
	return resp, nil
}
