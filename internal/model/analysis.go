package model

// RiskLevel - risk band derived from the loan-to-profit ratio
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

type MarketTrend string

const (
	TrendBullish MarketTrend = "Bullish"
	TrendBearish MarketTrend = "Bearish"
	TrendStable  MarketTrend = "Stable"
)

type ClimateRisk string

const (
	ClimateSafe     ClimateRisk = "Safe"
	ClimateModerate ClimateRisk = "Moderate"
	ClimateHigh     ClimateRisk = "High Risk"
)

// AnalysisSource - who produced the result
type AnalysisSource string

const (
	SourceAI       AnalysisSource = "ai"
	SourceFallback AnalysisSource = "fallback"
)

// AnalysisResult - outcome of a risk calculation, never persisted
type AnalysisResult struct {
	RiskScore         int            `json:"risk_score"`
	RiskLevel         RiskLevel      `json:"risk_level"`
	MaxLoanSuggestion float64        `json:"max_loan_suggestion"`
	ProjectedProfit   float64        `json:"projected_profit"`
	EstimatedCost     float64        `json:"estimated_cost"`
	BreakevenPoint    string         `json:"breakeven_point"`
	MarketTrend       MarketTrend    `json:"market_trend"`
	ClimateForecast   string         `json:"climate_forecast"`
	ClimateRisk       ClimateRisk    `json:"climate_risk"`
	SoilSuitability   int            `json:"soil_suitability"`
	Alternatives      []string       `json:"alternatives"`
	Explanation       string         `json:"explanation"`
	Source            AnalysisSource `json:"source"`
}

// AssistantRequest - transcript recognised on the client
type AssistantRequest struct {
	Transcript string `json:"transcript" validate:"required,max=500"`
	Language   string `json:"language" validate:"omitempty,len=2"`
}

type AssistantReply struct {
	Reply  string `json:"reply"`
	Locale string `json:"locale"`
}
