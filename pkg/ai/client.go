package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"resume-builder/internal/model"
)

// ActionGenerateContent is the capability a model must advertise to be
// used for field extraction.
const ActionGenerateContent = "generateContent"

// DefaultPreferredModels is tried in order before falling back to any model
// that supports content generation.
var DefaultPreferredModels = []string{
	"models/gemini-2.5-flash",
	"models/gemini-2.0-flash",
	"models/gemini-1.5-flash",
	"models/gemini-1.5-pro",
	"models/gemini-pro",
}

var ErrNoSuitableModel = errors.New("no suitable model found for content generation")

// ModelInfo describes a model offered by the completion service.
type ModelInfo struct {
	Name    string
	Actions []string
}

func (m ModelInfo) Supports(action string) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Backend is the remote completion service.
type Backend interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ExtractionError is returned by ExtractFields for every failure. Raw holds
// the completion text when one was received.
type ExtractionError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil && e.Reason == "" {
		return e.Err.Error()
	}
	return e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Client extracts résumé fields through a completion Backend.
type Client struct {
	backend   Backend
	preferred []string
	logger    *slog.Logger
}

// NewClient builds a client. An empty preferred list uses
// DefaultPreferredModels.
func NewClient(b Backend, preferred []string, logger *slog.Logger) *Client {
	if len(preferred) == 0 {
		preferred = DefaultPreferredModels
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{backend: b, preferred: preferred, logger: logger}
}

// SelectModel picks the first preferred model the service offers for
// content generation, else the first model that supports it.
func (c *Client) SelectModel(ctx context.Context) (string, error) {
	if c.backend == nil {
		return "", fmt.Errorf("%w: completion service not configured", ErrNoSuitableModel)
	}
	models, err := c.backend.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: completion service unavailable: %v", ErrNoSuitableModel, err)
	}
	if len(models) == 0 {
		return "", fmt.Errorf("%w: no models available", ErrNoSuitableModel)
	}

	usable := make(map[string]bool, len(models))
	for _, m := range models {
		if m.Supports(ActionGenerateContent) {
			usable[m.Name] = true
		}
	}
	for _, name := range c.preferred {
		if usable[name] {
			c.logger.Info("selected model", "model", name)
			return name, nil
		}
	}
	for _, m := range models {
		if usable[m.Name] {
			c.logger.Info("selected fallback model", "model", m.Name)
			return m.Name, nil
		}
	}
	return "", ErrNoSuitableModel
}

// ExtractFields asks the completion service to structure resumeText and
// returns the resulting JSON object unmodified. Every failure is an
// *ExtractionError.
func (c *Client) ExtractFields(ctx context.Context, resumeText string) (model.Record, error) {
	name, err := c.SelectModel(ctx)
	if err != nil {
		return nil, &ExtractionError{Reason: err.Error(), Err: err}
	}

	out, err := c.backend.Generate(ctx, name, extractionPrompt+resumeText)
	if err != nil {
		c.logger.Error("completion request failed", "model", name, "error", err)
		return nil, &ExtractionError{Reason: err.Error(), Err: err}
	}

	raw := strings.TrimSpace(out)
	if raw == "" {
		return nil, &ExtractionError{Reason: "Empty response from completion service"}
	}
	c.logger.Debug("completion response", "raw", raw)

	cleaned := CleanJSON(raw)
	c.logger.Debug("cleaned completion response", "cleaned", cleaned)

	var v interface{}
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		c.logger.Warn("completion response is not JSON", "error", err)
		return nil, &ExtractionError{Reason: "Invalid JSON format", Raw: raw, Err: err}
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		c.logger.Warn("completion response is not a JSON object", "type", fmt.Sprintf("%T", v))
		return nil, &ExtractionError{Reason: "Response is not a JSON object", Raw: raw}
	}
	return model.Record(obj), nil
}

// CleanJSON strips a Markdown code fence wrapped around a JSON payload. It
// does nothing else.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSpace(clean)
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
