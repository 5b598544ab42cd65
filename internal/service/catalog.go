package service

import (
	"loan4farm-api/internal/locale"
	"loan4farm-api/internal/model"
	"loan4farm-api/internal/scoring"
)

var schemes = []model.Scheme{
	{
		ID:          1,
		Name:        "PM-KISAN",
		FullName:    "Pradhan Mantri Kisan Samman Nidhi",
		Description: "Financial support of ₹6,000 per year for landholding farmer families.",
		URL:         "https://pmkisan.gov.in/",
	},
	{
		ID:          2,
		Name:        "PMFBY",
		FullName:    "Pradhan Mantri Fasal Bima Yojana",
		Description: "Crop insurance scheme providing financial support for crop loss due to natural calamities.",
		URL:         "https://pmfby.gov.in/",
	},
	{
		ID:          3,
		Name:        "KCC",
		FullName:    "Kisan Credit Card",
		Description: "Timely credit for farmers for cultivation, post-harvest expenses, and working capital.",
		URL:         "https://myscheme.gov.in/schemes/kcc",
	},
	{
		ID:          4,
		Name:        "e-NAM",
		FullName:    "National Agriculture Market",
		Description: "Pan-India electronic trading portal networking existing APMC mandis to create a unified national market.",
		URL:         "https://enam.gov.in/",
	},
	{
		ID:          5,
		Name:        "Soil Health Card",
		FullName:    "Soil Health Card Scheme",
		Description: "Provides information to farmers on nutrient status of their soil along with recommendations.",
		URL:         "https://soilhealth.dac.gov.in/",
	},
	{
		ID:          6,
		Name:        "PKVY",
		FullName:    "Paramparagat Krishi Vikas Yojana",
		Description: "Promotes organic farming through cluster approach and Participatory Guarantee System (PGS).",
		URL:         "https://pgsindia-ncof.gov.in/pkvy/index.aspx",
	},
}

var features = []model.Feature{
	{ID: 1, Title: "Weather Intelligence", Description: "90-day rainfall and pest outlook for your village before you borrow."},
	{ID: 2, Title: "Crop Advisory", Description: "Soil-aware crop suggestions with alternatives for the season."},
	{ID: 3, Title: "Market Prediction", Description: "Mandi and MSP price trends to plan the harvest sale."},
	{ID: 4, Title: "Crop Insurance", Description: "PMFBY cover bundled with every KCC disbursement."},
	{ID: 5, Title: "Loan Risk Calculator", Description: "Instant credit appraisal from cost of cultivation and expected revenue."},
	{ID: 6, Title: "Your Language", Description: "Use the app and the voice assistant in seven Indian languages."},
}

// CatalogService serves the static reference content
type CatalogService struct{}

func NewCatalogService() *CatalogService {
	return &CatalogService{}
}

func (s *CatalogService) Crops() []model.CropEconomics {
	return scoring.Crops()
}

func (s *CatalogService) Schemes() []model.Scheme {
	out := make([]model.Scheme, len(schemes))
	copy(out, schemes)
	return out
}

func (s *CatalogService) Features() []model.Feature {
	out := make([]model.Feature, len(features))
	copy(out, features)
	return out
}

func (s *CatalogService) Languages() []model.Language {
	return locale.Languages()
}
