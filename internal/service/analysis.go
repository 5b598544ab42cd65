package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/metrics"
	"loan4farm-api/internal/model"
	"loan4farm-api/internal/scoring"
)

//go:embed analysis_schema.json
var analysisSchemaJSON []byte

const analysisSchemaURL = "mem://analysis_schema.json"

var codeFence = regexp.MustCompile("```(?:json)?")

// aiAppraisal - shape the model is asked to return
type aiAppraisal struct {
	RiskScore         float64  `json:"riskScore"`
	RiskLevel         string   `json:"riskLevel"`
	MaxLoanSuggestion float64  `json:"maxLoanSuggestion"`
	ProjectedProfit   float64  `json:"projectedProfit"`
	EstimatedCost     float64  `json:"estimatedCost"`
	BreakevenPoint    string   `json:"breakevenPoint"`
	MarketTrend       string   `json:"marketTrend"`
	ClimateForecast   string   `json:"climateForecast"`
	ClimateRisk       string   `json:"climateRisk"`
	SoilSuitability   float64  `json:"soilSuitability"`
	Alternatives      []string `json:"alternatives"`
	Explanation       string   `json:"explanation"`
}

// AnalysisService produces the loan risk report, AI first and formula on any failure
type AnalysisService struct {
	generator     TextGenerator
	params        scoring.Params
	schema        *jsonschema.Schema
	fallbackDelay time.Duration
	logger        *logrus.Logger
}

// NewAnalysisService - generator may be nil, then only the formula is used
func NewAnalysisService(generator TextGenerator, params scoring.Params, fallbackDelay time.Duration, logger *logrus.Logger) (*AnalysisService, error) {
	schema, err := compileAnalysisSchema()
	if err != nil {
		return nil, err
	}
	return &AnalysisService{
		generator:     generator,
		params:        params,
		schema:        schema,
		fallbackDelay: fallbackDelay,
		logger:        logger,
	}, nil
}

func compileAnalysisSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(analysisSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse analysis schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(analysisSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add analysis schema: %w", err)
	}
	schema, err := c.Compile(analysisSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile analysis schema: %w", err)
	}
	return schema, nil
}

// Analyze returns a report for the farm. Only context cancellation is an error.
func (s *AnalysisService) Analyze(ctx context.Context, data model.FarmData) (*model.AnalysisResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"crop":        data.Crop,
		"land_size":   data.LandSize,
		"loan_amount": data.LoanAmount,
	})

	if s.generator == nil {
		log.Debug("No AI key configured, using the formula")
		if err := sleepCtx(ctx, s.fallbackDelay); err != nil {
			return nil, err
		}
		return s.fallback(data), nil
	}

	text, err := s.generator.GenerateText(ctx, buildAppraisalPrompt(data), true)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithError(err).Warn("AI appraisal failed, using the formula")
		metrics.AIFallbacksTotal.WithLabelValues("call").Inc()
		return s.fallback(data), nil
	}

	result, err := s.parseAppraisal(text)
	if err != nil {
		log.WithError(err).Warn("AI appraisal rejected, using the formula")
		metrics.AIFallbacksTotal.WithLabelValues("schema").Inc()
		return s.fallback(data), nil
	}

	metrics.AnalysesTotal.WithLabelValues(string(model.SourceAI)).Inc()
	log.WithField("risk_score", result.RiskScore).Info("AI appraisal accepted")
	return result, nil
}

func (s *AnalysisService) fallback(data model.FarmData) *model.AnalysisResult {
	res := scoring.Analyze(data, s.params)
	metrics.AnalysesTotal.WithLabelValues(string(model.SourceFallback)).Inc()
	return &res
}

// parseAppraisal strips markdown fences, validates against the schema and converts
func (s *AnalysisService) parseAppraisal(text string) (*model.AnalysisResult, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	if err := s.schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("response does not match schema: %w", err)
	}

	var a aiAppraisal
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &model.AnalysisResult{
		RiskScore:         int(math.Round(a.RiskScore)),
		RiskLevel:         model.RiskLevel(a.RiskLevel),
		MaxLoanSuggestion: a.MaxLoanSuggestion,
		ProjectedProfit:   a.ProjectedProfit,
		EstimatedCost:     a.EstimatedCost,
		BreakevenPoint:    a.BreakevenPoint,
		MarketTrend:       model.MarketTrend(a.MarketTrend),
		ClimateForecast:   a.ClimateForecast,
		ClimateRisk:       model.ClimateRisk(a.ClimateRisk),
		SoilSuitability:   int(math.Round(a.SoilSuitability)),
		Alternatives:      a.Alternatives,
		Explanation:       a.Explanation,
		Source:            model.SourceAI,
	}, nil
}

func buildAppraisalPrompt(d model.FarmData) string {
	return fmt.Sprintf(`Act as a Senior Agricultural Loan Officer for an Indian Bank (NABARD/SBI guidelines).
Perform a strict credit appraisal for this Kisan Credit Card (KCC) application.

INPUT DATA:
- Crop: %s
- Land: %g Acres
- Region: %s
- Loan Requested: Rs %.0f
- Soil: %s
- Season: %s

LOGIC (2024-25 Indian agri metrics):
1. Scale of Finance: total cost of cultivation for %[1]s in %[3]s.
2. Revenue: yield (Qtl/acre) x market price (MSP/Mandi).
3. Net profit: (revenue - cost) x land size.
4. Risk: Low when the loan is below 60%% of net profit, Medium for 60-90%%, High above.
5. Suggest exactly 3 alternative crops suited to %[5]s soil in %[3]s.

Return only a JSON object with the fields riskScore (0-100), riskLevel (Low|Medium|High),
maxLoanSuggestion, projectedProfit, estimatedCost, breakevenPoint (e.g. "15 Quintal/acre"),
marketTrend (Bullish|Bearish|Stable), climateForecast (90-day outlook for %[3]s),
climateRisk (Safe|Moderate|High Risk), soilSuitability (0-100), alternatives (3 names),
explanation (max 30 words, financial reasoning).`,
		d.Crop, d.LandSize, orDefault(d.Location, "India"), d.LoanAmount, orDefault(d.SoilType, "unspecified"), orDefault(string(d.Season), "unspecified"))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// sleepCtx waits d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsCanceled reports a caller-side cancellation
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
