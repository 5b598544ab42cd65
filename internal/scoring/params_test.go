package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan4farm-api/internal/model"
)

func TestDefaultParamsAreValid(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
}

func TestLoadParams_EmptyPathReturnsDefaults(t *testing.T) {
	p, err := LoadParams("")
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), p)
}

func TestLoadParams_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
loan_cap: 0.5
high:
  from: 0.9
  base: 80
  slope: 50
  cap: 10
alternatives:
  Rabi: [Barley, Oats, Linseed]
`), 0o600))

	p, err := LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.LoanCap)
	require.NotNil(t, p.High.Cap)
	assert.Equal(t, 10, *p.High.Cap)
	assert.Equal(t, []string{"Barley", "Oats", "Linseed"}, p.Alternatives[model.SeasonRabi])
	assert.Equal(t, []string{"Soybean", "Maize", "Groundnut"}, p.Alternatives[model.SeasonKharif])
	assert.Equal(t, 85, p.SoilBase)

	score, _, _ := p.RiskScore(10, 1)
	assert.Equal(t, 90, score)
}

func TestLoadParams_RejectsUnorderedBands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("medium:\n  from: 0.95\n  base: 50\n  slope: 66\n"), 0o600))

	_, err := LoadParams(path)
	assert.Error(t, err)
}

func TestLoadParams_ZeroCapPinsBandToBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("high:\n  from: 0.9\n  base: 80\n  slope: 50\n  cap: 0\n"), 0o600))

	p, err := LoadParams(path)
	require.NoError(t, err)
	score, _, _ := p.RiskScore(10, 1)
	assert.Equal(t, 80, score)
}

func TestParamsValidate_RejectsOutOfRangeScores(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
	}{
		{"loss score", func(p *Params) { p.LossScore = 101 }},
		{"soil base", func(p *Params) { p.SoilBase = -1 }},
		{"band base", func(p *Params) { p.High.Base = 120 }},
		{"negative cap", func(p *Params) { p.High.Cap = intPtr(-5) }},
		{"penalty score", func(p *Params) { p.SoilPenalty[0].Score = 150 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestLoadParams_MissingFile(t *testing.T) {
	_, err := LoadParams(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
