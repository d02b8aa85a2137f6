// Package detect asks a language model to propose module boundaries for a project from its folder
// listing, and validates the answer.
package detect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/via/internal/logging"
	"github.com/odvcencio/via/pkg/model"
)

var ErrInvalidResponse = errors.New("invalid detection response")

// Detector proposes modules for a folder listing (folder path -> file names).
type Detector interface {
	Detect(ctx context.Context, folders map[string][]string) (model.Detection, error)
}

// Generator produces a JSON completion for a system prompt and a user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type Option func(*LLMDetector)

func WithLogger(logger *zap.Logger) Option {
	return func(d *LLMDetector) {
		d.logger = logging.OrNop(logger)
	}
}

// LLMDetector implements Detector over a Generator.
type LLMDetector struct {
	gen    Generator
	logger *zap.Logger
}

var _ Detector = (*LLMDetector)(nil)

func New(gen Generator, opts ...Option) *LLMDetector {
	d := &LLMDetector{gen: gen, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect sends the listing to the model and returns the validated modules. Modules whose entry file
// is not part of the listing are dropped.
func (d *LLMDetector) Detect(ctx context.Context, folders map[string][]string) (model.Detection, error) {
	input, err := json.Marshal(folders)
	if err != nil {
		return model.Detection{}, err
	}
	d.logger.Debug("requesting module detection", zap.Int("folders", len(folders)))

	raw, err := d.gen.Generate(ctx, SystemPrompt, string(input))
	if err != nil {
		return model.Detection{}, fmt.Errorf("module detection: %w", err)
	}
	detection, err := Parse(raw)
	if err != nil {
		return model.Detection{}, err
	}

	known := map[string]bool{}
	for folder, names := range folders {
		for _, name := range names {
			known[path.Join(folder, name)] = true
		}
	}
	kept := detection.Modules[:0]
	for _, m := range detection.Modules {
		if !known[path.Clean(m.EntryFile)] {
			d.logger.Warn("dropping detected module with unknown entry file",
				zap.String("module", m.ModuleName), zap.String("entry", m.EntryFile))
			continue
		}
		m.EntryFile = path.Clean(m.EntryFile)
		kept = append(kept, m)
	}
	detection.Modules = kept
	d.logger.Debug("module detection finished", zap.Int("modules", len(kept)))
	return detection, nil
}

// Parse decodes and validates a detection response. Markdown code fences around the JSON are
// tolerated.
func Parse(raw string) (model.Detection, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var payload struct {
		Modules []struct {
			ModuleName string `json:"moduleName"`
			EntryFile  string `json:"entryFile"`
			Confidence string `json:"confidence"`
		} `json:"modules"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return model.Detection{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	detection := model.Detection{Modules: make([]model.DetectedModule, 0, len(payload.Modules))}
	for i, m := range payload.Modules {
		name := strings.TrimSpace(m.ModuleName)
		entry := strings.TrimSpace(m.EntryFile)
		if name == "" || entry == "" {
			return model.Detection{}, fmt.Errorf("%w: module %d has an empty name or entry file", ErrInvalidResponse, i)
		}
		confidence, err := model.ParseConfidence(m.Confidence)
		if err != nil {
			return model.Detection{}, fmt.Errorf("%w: module %q: %v", ErrInvalidResponse, name, err)
		}
		detection.Modules = append(detection.Modules, model.DetectedModule{
			ModuleName: name,
			EntryFile:  strings.TrimPrefix(entry, "./"),
			Confidence: confidence,
		})
	}
	return detection, nil
}

// Usable keeps the high and medium confidence modules.
func Usable(d model.Detection) []model.DetectedModule {
	var out []model.DetectedModule
	for _, m := range d.Modules {
		if m.Confidence == model.ConfidenceHigh || m.Confidence == model.ConfidenceMedium {
			out = append(out, m)
		}
	}
	return out
}
