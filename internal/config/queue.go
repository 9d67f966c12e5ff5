package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"IndicatorsQueue/internal/domain"
)

// Unresolved region policies.
const (
	RegionPolicyDrop = "drop"
	RegionPolicyKeep = "keep"
)

// QueueConfig holds the ranking options applied to one run.
type QueueConfig struct {
	LowImpactRange    domain.ImpactRange `yaml:"lowImpactRange"`
	MediumImpactRange domain.ImpactRange `yaml:"mediumImpactRange"`
	HighImpactRange   domain.ImpactRange `yaml:"highImpactRange"`

	LowTopRiskPercentage    float64 `yaml:"lowTopRiskPercentage"`
	MediumTopRiskPercentage float64 `yaml:"mediumTopRiskPercentage"`
	HighTopRiskPercentage   float64 `yaml:"highTopRiskPercentage"`

	LowTopRiskProcuringEntityPercentage    float64 `yaml:"lowTopRiskProcuringEntityPercentage"`
	MediumTopRiskProcuringEntityPercentage float64 `yaml:"mediumTopRiskProcuringEntityPercentage"`
	HighTopRiskProcuringEntityPercentage   float64 `yaml:"highTopRiskProcuringEntityPercentage"`

	ForbiddenCPVPrefix     string `yaml:"forbiddenCpvPrefix"`
	UnresolvedRegionPolicy string `yaml:"unresolvedRegionPolicy"`
	LookupConcurrency      int    `yaml:"lookupConcurrency"`
}

// DefaultQueueConfig returns the settings used when nothing is configured.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		LowImpactRange:    domain.ImpactRange{Min: 0, Max: 30},
		MediumImpactRange: domain.ImpactRange{Min: 30, Max: 70},
		HighImpactRange:   domain.ImpactRange{Min: 70},

		LowTopRiskPercentage:    10,
		MediumTopRiskPercentage: 10,
		HighTopRiskPercentage:   10,

		LowTopRiskProcuringEntityPercentage:    5,
		MediumTopRiskProcuringEntityPercentage: 5,
		HighTopRiskProcuringEntityPercentage:   5,

		ForbiddenCPVPrefix:     "6611",
		UnresolvedRegionPolicy: RegionPolicyDrop,
		LookupConcurrency:      8,
	}
}

// Range returns the impact range configured for the bucket.
func (q QueueConfig) Range(b domain.Bucket) domain.ImpactRange {
	switch b {
	case domain.BucketLow:
		return q.LowImpactRange
	case domain.BucketMedium:
		return q.MediumImpactRange
	default:
		return q.HighImpactRange
	}
}

// TopRiskPercentage is the share of a bucket promoted by materiality score.
func (q QueueConfig) TopRiskPercentage(b domain.Bucket) float64 {
	switch b {
	case domain.BucketLow:
		return q.LowTopRiskPercentage
	case domain.BucketMedium:
		return q.MediumTopRiskPercentage
	default:
		return q.HighTopRiskPercentage
	}
}

// EntityPercentage is the share of procuring entities promoted within a bucket.
func (q QueueConfig) EntityPercentage(b domain.Bucket) float64 {
	switch b {
	case domain.BucketLow:
		return q.LowTopRiskProcuringEntityPercentage
	case domain.BucketMedium:
		return q.MediumTopRiskProcuringEntityPercentage
	default:
		return q.HighTopRiskProcuringEntityPercentage
	}
}

// Validate checks percentages and that the bands do not overlap.
func (q QueueConfig) Validate() error {
	var errs []error

	for _, b := range domain.Buckets {
		if p := q.TopRiskPercentage(b); p < 0 || p > 100 {
			errs = append(errs, fmt.Errorf("%s top risk percentage %g out of [0,100]", b, p))
		}
		if p := q.EntityPercentage(b); p < 0 || p > 100 {
			errs = append(errs, fmt.Errorf("%s procuring entity percentage %g out of [0,100]", b, p))
		}
	}

	if q.LowImpactRange.Min >= q.LowImpactRange.Max {
		errs = append(errs, fmt.Errorf("low impact range %s is empty", q.LowImpactRange))
	}
	if q.MediumImpactRange.Min >= q.MediumImpactRange.Max {
		errs = append(errs, fmt.Errorf("medium impact range %s is empty", q.MediumImpactRange))
	}
	if q.HighImpactRange.Max != 0 && q.HighImpactRange.Min >= q.HighImpactRange.Max {
		errs = append(errs, fmt.Errorf("high impact range %s is empty", q.HighImpactRange))
	}
	if q.LowImpactRange.Max > q.MediumImpactRange.Min {
		errs = append(errs, fmt.Errorf("low impact range %s overlaps medium %s", q.LowImpactRange, q.MediumImpactRange))
	}
	if q.MediumImpactRange.Max > q.HighImpactRange.Min {
		errs = append(errs, fmt.Errorf("medium impact range %s overlaps high %s", q.MediumImpactRange, q.HighImpactRange))
	}

	switch q.UnresolvedRegionPolicy {
	case RegionPolicyDrop, RegionPolicyKeep:
	default:
		errs = append(errs, fmt.Errorf("unknown unresolved region policy %q", q.UnresolvedRegionPolicy))
	}

	return errors.Join(errs...)
}

var percentageEnv = map[string]func(*QueueConfig) *float64{
	"LOW_TOP_RISK_PERCENTAGE":                     func(q *QueueConfig) *float64 { return &q.LowTopRiskPercentage },
	"MEDIUM_TOP_RISK_PERCENTAGE":                  func(q *QueueConfig) *float64 { return &q.MediumTopRiskPercentage },
	"HIGH_TOP_RISK_PERCENTAGE":                    func(q *QueueConfig) *float64 { return &q.HighTopRiskPercentage },
	"LOW_TOP_RISK_PROCURING_ENTITY_PERCENTAGE":    func(q *QueueConfig) *float64 { return &q.LowTopRiskProcuringEntityPercentage },
	"MEDIUM_TOP_RISK_PROCURING_ENTITY_PERCENTAGE": func(q *QueueConfig) *float64 { return &q.MediumTopRiskProcuringEntityPercentage },
	"HIGH_TOP_RISK_PROCURING_ENTITY_PERCENTAGE":   func(q *QueueConfig) *float64 { return &q.HighTopRiskProcuringEntityPercentage },
}

func (q *QueueConfig) applyEnvOverrides() {
	for env, field := range percentageEnv {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			log.Printf("config: %s=%q is not a number, ignoring", env, v)
			continue
		}
		*field(q) = parsed
	}

	if v := os.Getenv("FORBIDDEN_CPV_PREFIX"); v != "" {
		q.ForbiddenCPVPrefix = v
	}
	if v := os.Getenv("UNRESOLVED_REGION_POLICY"); v != "" {
		q.UnresolvedRegionPolicy = v
	}
	if v := os.Getenv("LOOKUP_CONCURRENCY"); v != "" {
		if n, err := cast.ToIntE(v); err == nil {
			q.LookupConcurrency = n
		}
	}
}

// QueueSettingsProvider re-reads the queue section before every run so that
// operators can tune bands and percentages without a restart.
type QueueSettingsProvider struct {
	path string
	base QueueConfig

	mu       sync.RWMutex
	settings QueueConfig
}

// NewQueueSettingsProvider uses base when path is empty or unreadable.
func NewQueueSettingsProvider(path string, base QueueConfig) *QueueSettingsProvider {
	return &QueueSettingsProvider{path: path, base: base, settings: base}
}

// Init refreshes and validates the settings.
func (p *QueueSettingsProvider) Init() error {
	next := p.base
	if p.path != "" {
		raw, err := os.ReadFile(p.path)
		if err != nil {
			return fmt.Errorf("read queue settings %s: %w", p.path, err)
		}
		file := struct {
			Queue QueueConfig `yaml:"queue"`
		}{Queue: next}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return fmt.Errorf("parse queue settings %s: %w", p.path, err)
		}
		next = file.Queue
	}
	next.applyEnvOverrides()

	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid queue settings: %w", err)
	}

	p.mu.Lock()
	p.settings = next
	p.mu.Unlock()
	return nil
}

// Settings returns the settings loaded by the last successful Init.
func (p *QueueSettingsProvider) Settings() QueueConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}
