package model

// Season - crop season type used by the scale of finance
type Season string

const (
	SeasonRabi   Season = "Rabi"
	SeasonKharif Season = "Kharif"
	SeasonAnnual Season = "Annual"
)

// Soil types accepted by the calculator
const (
	SoilAlluvial = "Alluvial"
	SoilBlack    = "Black (Regur)"
	SoilRed      = "Red"
	SoilLaterite = "Laterite"
	SoilSandy    = "Sandy"
)

// FarmData - input of a single risk calculation
type FarmData struct {
	Crop       string  `json:"crop" validate:"required,max=64"`
	LandSize   float64 `json:"land_size" validate:"required,gt=0,lte=10000"`
	Location   string  `json:"location" validate:"max=128"`
	LoanAmount float64 `json:"loan_amount" validate:"required,gt=0"`
	SoilType   string  `json:"soil_type" validate:"omitempty,oneof='Alluvial' 'Black (Regur)' 'Red' 'Laterite' 'Sandy'"`
	Season     Season  `json:"season" validate:"omitempty,oneof=Rabi Kharif Annual"`
}

// CropEconomics - per-acre economics of a crop (scale of finance + MSP)
type CropEconomics struct {
	Name         string  `json:"name" yaml:"name"`
	CostPerAcre  float64 `json:"cost_per_acre" yaml:"cost_per_acre"`
	YieldPerAcre float64 `json:"yield_per_acre" yaml:"yield_per_acre"`
	PricePerUnit float64 `json:"price_per_unit" yaml:"price_per_unit"`
	Unit         string  `json:"unit" yaml:"unit"`
	Type         Season  `json:"type" yaml:"type"`
}
