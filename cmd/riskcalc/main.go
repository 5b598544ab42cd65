package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"loan4farm-api/internal/locale"
	"loan4farm-api/internal/model"
	"loan4farm-api/internal/scoring"
)

var version = "v0.0.1-default"

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if err := run(context.Background(), os.Args, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func newCommand(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "riskcalc",
		Usage:   "Offline KCC loan risk appraisal from the scale-of-finance formula",
		Version: version,
		Writer:  w,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "crop", Usage: "Crop name, e.g. Wheat", Required: true},
			&cli.FloatFlag{Name: "land", Usage: "Land size in acres", Required: true},
			&cli.FloatFlag{Name: "loan", Usage: "Requested loan in rupees", Required: true},
			&cli.StringFlag{Name: "soil", Usage: "Soil type (Alluvial, Black (Regur), Red, Laterite, Sandy)"},
			&cli.StringFlag{Name: "season", Usage: "Season (Rabi, Kharif, Annual)"},
			&cli.StringFlag{Name: "params", Usage: "YAML file overriding the risk parameters", Sources: cli.EnvVars("RISK_PARAMS_PATH")},
			&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
			&cli.BoolFlag{Name: "debug", Usage: "Verbose logs"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Action: appraise,
	}
}

func run(ctx context.Context, args []string, w io.Writer) error {
	return newCommand(w).Run(ctx, args)
}

func appraise(ctx context.Context, cmd *cli.Command) error {
	data := model.FarmData{
		Crop:       strings.TrimSpace(cmd.String("crop")),
		LandSize:   cmd.Float("land"),
		LoanAmount: cmd.Float("loan"),
		SoilType:   cmd.String("soil"),
		Season:     model.Season(cmd.String("season")),
	}
	if err := validator.New().Struct(data); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	params, err := scoring.LoadParams(cmd.String("params"))
	if err != nil {
		return err
	}
	if _, ok := scoring.LookupCrop(data.Crop); !ok {
		log.WithField("crop", data.Crop).Warn("Unknown crop, using Wheat economics")
	}

	res := scoring.Analyze(data, params)
	log.WithField("risk_score", res.RiskScore).Debug("Appraisal done")

	if cmd.Bool("json") {
		enc := json.NewEncoder(cmd.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printSummary(cmd.Writer, data, res)
}

func printSummary(w io.Writer, data model.FarmData, res model.AnalysisResult) error {
	_, err := fmt.Fprintf(w, `Crop:             %s (%g acres)
Loan requested:   %s
Estimated cost:   %s
Projected profit: %s
Risk:             %d/100 (%s)
Max loan:         %s
Breakeven:        %s
Soil suitability: %d%%
Alternatives:     %s
%s
`,
		data.Crop, data.LandSize,
		locale.Rupees(data.LoanAmount),
		locale.Rupees(res.EstimatedCost),
		locale.Rupees(res.ProjectedProfit),
		res.RiskScore, res.RiskLevel,
		locale.Rupees(res.MaxLoanSuggestion),
		res.BreakevenPoint,
		res.SoilSuitability,
		strings.Join(res.Alternatives, ", "),
		res.Explanation,
	)
	return err
}
