// Package automation forwards lead updates to the Make.com and n8n scenarios
// that drive the firm's downstream workflows.
package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 10 * time.Second

	// OperationUpdateTask tells the scenario to write the lead back to ClickUp
	OperationUpdateTask = "updateTask"
)

// Target names
const (
	TargetMake = "make"
	TargetN8n  = "n8n"
)

// ClickUpData is the tracker-side view of the lead the scenario should apply
type ClickUpData struct {
	Name         string            `json:"name"`
	Status       string            `json:"status"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// Payload is the body posted to every configured scenario
type Payload struct {
	Operation   string      `json:"operation"`
	TaskID      string      `json:"taskId"`
	FormData    domain.Lead `json:"formData"`
	ClickUpData ClickUpData `json:"clickupData"`
	Pricing     Quote       `json:"pricing"`
}

// Config holds the scenario webhook URLs. Empty URLs are skipped.
type Config struct {
	MakeWebhookURL string
	N8nWebhookURL  string
	Timeout        time.Duration
}

// Forwarder posts lead updates to the configured scenarios
type Forwarder struct {
	httpClient *http.Client
	targets    []target
	logger     *zap.Logger
}

type target struct {
	name string
	url  string
}

func NewForwarder(cfg Config, logger *zap.Logger) *Forwarder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	f := &Forwarder{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	if cfg.MakeWebhookURL != "" {
		f.targets = append(f.targets, target{name: TargetMake, url: cfg.MakeWebhookURL})
	}
	if cfg.N8nWebhookURL != "" {
		f.targets = append(f.targets, target{name: TargetN8n, url: cfg.N8nWebhookURL})
	}
	return f
}

// Configured reports whether at least one scenario URL is set
func (f *Forwarder) Configured() bool {
	return f != nil && len(f.targets) > 0
}

// Configures reports whether the named target has a URL
func (f *Forwarder) Configures(name string) bool {
	if f == nil {
		return false
	}
	for _, t := range f.targets {
		if t.name == name {
			return true
		}
	}
	return false
}

// Forward posts the lead to every configured scenario. All targets are
// attempted; the returned error joins the individual failures.
func (f *Forwarder) Forward(ctx context.Context, lead *domain.Lead, data ClickUpData) error {
	if !f.Configured() {
		return nil
	}

	payload := Payload{
		Operation:   OperationUpdateTask,
		TaskID:      lead.TaskID,
		FormData:    *lead,
		ClickUpData: data,
		Pricing:     QuoteFor(lead.CreditorCount, 0),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode automation payload: %w", err)
	}

	var errs []error
	for _, t := range f.targets {
		if err := f.post(ctx, t, body); err != nil {
			f.logger.Warn("automation webhook failed",
				zap.String("target", t.name),
				zap.String("task_id", lead.TaskID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
			continue
		}
		f.logger.Debug("automation webhook delivered",
			zap.String("target", t.name),
			zap.String("task_id", lead.TaskID))
	}
	return errors.Join(errs...)
}

func (f *Forwarder) post(ctx context.Context, t target, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
