package scoring

import (
	"fmt"
	"math"

	"loan4farm-api/internal/model"
)

const (
	explainLoss   = "Projected loss due to high input costs. Loan repayment highly risky."
	explainLow    = "Loan amount is comfortably within projected net profit margins."
	explainMedium = "Loan is high relative to profit. Partial collateral recommended."
	explainHigh   = "Loan amount exceeds or matches projected profit. High default risk."
)

// Financials - per-request economics before banding
type Financials struct {
	Crop         model.CropEconomics
	TotalCost    float64
	GrossRevenue float64
	NetProfit    float64
}

// Compute scales the crop economics to the land size
func Compute(crop string, landSize float64) Financials {
	c := economicsFor(crop)
	totalCost := c.CostPerAcre * landSize
	grossRevenue := c.YieldPerAcre * c.PricePerUnit * landSize
	return Financials{
		Crop:         c,
		TotalCost:    totalCost,
		GrossRevenue: grossRevenue,
		NetProfit:    grossRevenue - totalCost,
	}
}

// RiskScore bands a loan against the projected net profit
func (p Params) RiskScore(loanAmount, netProfit float64) (int, model.RiskLevel, string) {
	if netProfit <= 0 {
		return p.LossScore, model.RiskHigh, explainLoss
	}

	ratio := loanAmount / netProfit
	switch {
	case ratio < p.Medium.From:
		return p.Low.score(ratio), model.RiskLow, explainLow
	case ratio < p.High.From:
		return p.Medium.score(ratio), model.RiskMedium, explainMedium
	default:
		return p.High.score(ratio), model.RiskHigh, explainHigh
	}
}

func (b Band) score(ratio float64) int {
	// clamp in float; huge ratios overflow int
	step := math.Round((ratio - b.From) * b.Slope)
	if b.Cap != nil {
		step = math.Min(step, float64(*b.Cap))
	}
	step = math.Max(0, math.Min(step, float64(maxScore-b.Base)))
	return b.Base + int(step)
}

// SoilSuitability returns the base score unless a penalty pair matches
func (p Params) SoilSuitability(crop, soil string) int {
	score := p.SoilBase
	for _, sp := range p.SoilPenalty {
		if sp.Crop != crop {
			continue
		}
		if (sp.Soil != "" && soil == sp.Soil) || (sp.NotSoil != "" && soil != sp.NotSoil) {
			score = sp.Score
		}
	}
	return score
}

// MaxLoan - safe loan limit, a share of the net profit, never negative
func (p Params) MaxLoan(netProfit float64) float64 {
	return math.Max(0, math.Round(netProfit*p.LoanCap))
}

// Analyze is the deterministic fallback appraisal
func Analyze(data model.FarmData, p Params) model.AnalysisResult {
	f := Compute(data.Crop, data.LandSize)
	score, level, explanation := p.RiskScore(data.LoanAmount, f.NetProfit)

	trend := model.TrendBearish
	if f.NetProfit > 0 {
		trend = model.TrendBullish
	}

	alternatives := make([]string, len(p.Alternatives[f.Crop.Type]))
	copy(alternatives, p.Alternatives[f.Crop.Type])

	return model.AnalysisResult{
		RiskScore:         score,
		RiskLevel:         level,
		MaxLoanSuggestion: p.MaxLoan(f.NetProfit),
		ProjectedProfit:   f.NetProfit,
		EstimatedCost:     f.TotalCost,
		BreakevenPoint:    fmt.Sprintf("%d %s/acre", int(math.Round(f.Crop.CostPerAcre/f.Crop.PricePerUnit)), f.Crop.Unit),
		MarketTrend:       trend,
		ClimateForecast:   p.Climate,
		ClimateRisk:       model.ClimateSafe,
		SoilSuitability:   p.SoilSuitability(data.Crop, data.SoilType),
		Alternatives:      alternatives,
		Explanation:       explanation,
		Source:            model.SourceFallback,
	}
}
