// Package secrets scans chunk text for leaked credentials before it is
// sent to the embedding API or persisted.
//
// Detection is delegated to gitleaks' default ruleset. Findings are
// redacted in place rather than rejected: documentation trees routinely
// contain example keys, and a redacted chunk still embeds usefully.
package secrets

import (
	"fmt"
	"strings"

	"github.com/zricethezav/gitleaks/v8/detect"
	"go.uber.org/zap"
)

// DefaultRedaction replaces detected secrets.
const DefaultRedaction = "[REDACTED]"

// Config holds scanner configuration.
type Config struct {
	// Enabled turns scanning on. Disabled scanners pass text through.
	Enabled bool

	// Redaction is the replacement string for detected secrets.
	Redaction string
}

// Finding describes one detected secret. The secret value itself is
// never carried here.
type Finding struct {
	RuleID      string
	Description string
	Line        int
}

// Result is the outcome of scanning one text.
type Result struct {
	// Text is the input with all detected secrets redacted.
	Text string

	// Findings lists what was detected, in detection order.
	Findings []Finding
}

// Scanner detects and redacts secrets in text.
type Scanner struct {
	cfg      Config
	detector *detect.Detector
	logger   *zap.Logger
}

// NewScanner creates a scanner with gitleaks' default rules. A nil
// logger is replaced with a no-op.
func NewScanner(cfg Config, logger *zap.Logger) (*Scanner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Redaction == "" {
		cfg.Redaction = DefaultRedaction
	}

	scanner := &Scanner{cfg: cfg, logger: logger}
	if !cfg.Enabled {
		return scanner, nil
	}

	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("loading gitleaks rules: %w", err)
	}
	scanner.detector = detector

	return scanner, nil
}

// Scan detects secrets in text and returns the redacted text along
// with the findings. With scanning disabled, text passes through
// unchanged.
func (s *Scanner) Scan(text, source string) Result {
	if !s.cfg.Enabled || s.detector == nil {
		return Result{Text: text}
	}

	detected := s.detector.DetectString(text)
	if len(detected) == 0 {
		return Result{Text: text}
	}

	result := Result{Text: text}
	for _, finding := range detected {
		if finding.Secret != "" {
			result.Text = strings.ReplaceAll(result.Text, finding.Secret, s.cfg.Redaction)
		}
		result.Findings = append(result.Findings, Finding{
			RuleID:      finding.RuleID,
			Description: finding.Description,
			Line:        finding.StartLine,
		})

		s.logger.Warn("secret redacted",
			zap.String("source", source),
			zap.String("rule", finding.RuleID),
			zap.Int("line", finding.StartLine))
	}
	return result
}
