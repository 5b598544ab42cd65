package scoring

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"loan4farm-api/internal/model"
)

// Band - score = Base + min(Cap, round((ratio - From) * Slope))
type Band struct {
	From  float64 `yaml:"from"`
	Base  int     `yaml:"base"`
	Slope float64 `yaml:"slope"`
	Cap   *int    `yaml:"cap,omitempty"` // nil means uncapped
}

const maxScore = 100

// SoilPenalty - fixed suitability for a crop grown on an unsuited soil.
// Exactly one of Soil / NotSoil is set.
type SoilPenalty struct {
	Crop    string `yaml:"crop"`
	Soil    string `yaml:"soil,omitempty"`
	NotSoil string `yaml:"not_soil,omitempty"`
	Score   int    `yaml:"score"`
}

// Params - tunable constants of the fallback formula
type Params struct {
	Low          Band                      `yaml:"low"`
	Medium       Band                      `yaml:"medium"`
	High         Band                      `yaml:"high"`
	LossScore    int                       `yaml:"loss_score"`
	LoanCap      float64                   `yaml:"loan_cap"`
	SoilBase     int                       `yaml:"soil_base"`
	SoilPenalty  []SoilPenalty             `yaml:"soil_penalties"`
	Alternatives map[model.Season][]string `yaml:"alternatives"`
	Climate      string                    `yaml:"climate_forecast"`
}

// DefaultParams returns the calibrated constants
func DefaultParams() Params {
	return Params{
		Low:       Band{From: 0, Base: 20, Slope: 20},
		Medium:    Band{From: 0.6, Base: 50, Slope: 66},
		High:      Band{From: 0.9, Base: 80, Slope: 50, Cap: intPtr(15)},
		LossScore: 95,
		LoanCap:   0.6,
		SoilBase:  85,
		SoilPenalty: []SoilPenalty{
			{Crop: "Cotton", NotSoil: model.SoilBlack, Score: 55},
			{Crop: "Rice/Paddy", Soil: model.SoilSandy, Score: 40},
			{Crop: "Sugarcane", Soil: model.SoilSandy, Score: 45},
		},
		Alternatives: map[model.Season][]string{
			model.SeasonRabi:   {"Mustard", "Chickpea (Gram)", "Barley"},
			model.SeasonKharif: {"Soybean", "Maize", "Groundnut"},
			model.SeasonAnnual: {"Turmeric", "Banana", "Vegetables"},
		},
		Climate: "Normal rainfall expected. Low pest incidence predicted for next 90 days.",
	}
}

// Validate checks that bands are ordered and lists are complete
func (p Params) Validate() error {
	if !(p.Low.From <= p.Medium.From && p.Medium.From <= p.High.From) {
		return errors.New("band thresholds must be non-decreasing")
	}
	if p.Low.Base > p.Medium.Base || p.Medium.Base > p.High.Base {
		return errors.New("band bases must be non-decreasing")
	}
	if p.Low.Slope < 0 || p.Medium.Slope < 0 || p.High.Slope < 0 {
		return errors.New("band slopes must be non-negative")
	}
	for name, b := range map[string]Band{"low": p.Low, "medium": p.Medium, "high": p.High} {
		if err := checkScore(name+" base", b.Base); err != nil {
			return err
		}
		if b.Cap != nil && *b.Cap < 0 {
			return fmt.Errorf("%s cap %d must not be negative", name, *b.Cap)
		}
	}
	if err := checkScore("loss_score", p.LossScore); err != nil {
		return err
	}
	if err := checkScore("soil_base", p.SoilBase); err != nil {
		return err
	}
	if p.LoanCap <= 0 || p.LoanCap > 1 {
		return fmt.Errorf("loan cap %.2f out of range (0, 1]", p.LoanCap)
	}
	for _, s := range []model.Season{model.SeasonRabi, model.SeasonKharif, model.SeasonAnnual} {
		if len(p.Alternatives[s]) != 3 {
			return fmt.Errorf("season %s needs exactly 3 alternatives", s)
		}
	}
	for _, sp := range p.SoilPenalty {
		if (sp.Soil == "") == (sp.NotSoil == "") {
			return fmt.Errorf("soil penalty for %s must set exactly one of soil/not_soil", sp.Crop)
		}
		if err := checkScore("soil penalty for "+sp.Crop, sp.Score); err != nil {
			return err
		}
	}
	return nil
}

func checkScore(name string, v int) error {
	if v < 0 || v > maxScore {
		return fmt.Errorf("%s %d out of range [0, %d]", name, v, maxScore)
	}
	return nil
}

func intPtr(v int) *int { return &v }

// LoadParams reads overrides from a YAML file on top of the defaults
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read risk params: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("failed to parse risk params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid risk params: %w", err)
	}
	return p, nil
}
