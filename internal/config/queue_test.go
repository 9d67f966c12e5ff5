package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IndicatorsQueue/internal/domain"
)

func TestQueueConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*QueueConfig)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*QueueConfig) {}},
		{
			name:    "percentage above hundred",
			mutate:  func(q *QueueConfig) { q.MediumTopRiskPercentage = 101 },
			wantErr: "medium top risk percentage",
		},
		{
			name:    "negative entity percentage",
			mutate:  func(q *QueueConfig) { q.HighTopRiskProcuringEntityPercentage = -1 },
			wantErr: "high procuring entity percentage",
		},
		{
			name:    "empty low range",
			mutate:  func(q *QueueConfig) { q.LowImpactRange = domain.ImpactRange{Min: 10, Max: 10} },
			wantErr: "low impact range",
		},
		{
			name:    "overlapping bands",
			mutate:  func(q *QueueConfig) { q.MediumImpactRange = domain.ImpactRange{Min: 20, Max: 70} },
			wantErr: "overlaps medium",
		},
		{
			name:    "unknown policy",
			mutate:  func(q *QueueConfig) { q.UnresolvedRegionPolicy = "ignore" },
			wantErr: "unresolved region policy",
		},
		{
			name:   "unbounded high band",
			mutate: func(q *QueueConfig) { q.HighImpactRange = domain.ImpactRange{Min: 70, Max: 0} },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			q := DefaultQueueConfig()
			tc.mutate(&q)
			err := q.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestQueueSettingsProviderInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
queue:
  lowImpactRange: {min: 0, max: 100}
  mediumImpactRange: {min: 100, max: 200}
  highImpactRange: {min: 200}
  lowTopRiskPercentage: 20
  forbiddenCpvPrefix: "6612"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	provider := NewQueueSettingsProvider(path, DefaultQueueConfig())
	require.NoError(t, provider.Init())

	s := provider.Settings()
	assert.Equal(t, domain.ImpactRange{Min: 0, Max: 100}, s.LowImpactRange)
	assert.Equal(t, 20.0, s.LowTopRiskPercentage)
	assert.Equal(t, "6612", s.ForbiddenCPVPrefix)
	// untouched keys keep their defaults
	assert.Equal(t, 10.0, s.MediumTopRiskPercentage)
	assert.Equal(t, RegionPolicyDrop, s.UnresolvedRegionPolicy)

	t.Setenv("LOW_TOP_RISK_PERCENTAGE", "35.5")
	require.NoError(t, provider.Init())
	assert.Equal(t, 35.5, provider.Settings().LowTopRiskPercentage)
}

func TestQueueSettingsProviderKeepsPreviousOnInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue:\n  lowTopRiskPercentage: 150\n"), 0o600))

	base := DefaultQueueConfig()
	provider := NewQueueSettingsProvider(path, base)

	err := provider.Init()
	require.Error(t, err)
	assert.Equal(t, base, provider.Settings())
}

func TestQueueSettingsProviderWithoutFile(t *testing.T) {
	t.Parallel()

	provider := NewQueueSettingsProvider("", DefaultQueueConfig())
	require.NoError(t, provider.Init())
	assert.Equal(t, "6611", provider.Settings().ForbiddenCPVPrefix)
}
