package scoring

import (
	"sort"

	"loan4farm-api/internal/model"
)

// DefaultCrop - reference crop used when the requested one is unknown
const DefaultCrop = "Wheat"

// Approximate NABARD scale of finance and MSP, 2024-25
var cropTable = map[string]model.CropEconomics{
	"Wheat":        {Name: "Wheat", CostPerAcre: 28000, YieldPerAcre: 20, PricePerUnit: 2275, Unit: "Quintal", Type: model.SeasonRabi},
	"Rice/Paddy":   {Name: "Rice/Paddy", CostPerAcre: 35000, YieldPerAcre: 25, PricePerUnit: 2203, Unit: "Quintal", Type: model.SeasonKharif},
	"Cotton":       {Name: "Cotton", CostPerAcre: 38000, YieldPerAcre: 10, PricePerUnit: 7000, Unit: "Quintal", Type: model.SeasonKharif},
	"Sugarcane":    {Name: "Sugarcane", CostPerAcre: 65000, YieldPerAcre: 400, PricePerUnit: 340, Unit: "Quintal", Type: model.SeasonAnnual},
	"Maize":        {Name: "Maize", CostPerAcre: 22000, YieldPerAcre: 25, PricePerUnit: 2090, Unit: "Quintal", Type: model.SeasonKharif},
	"Pulses (Dal)": {Name: "Pulses (Dal)", CostPerAcre: 18000, YieldPerAcre: 8, PricePerUnit: 6600, Unit: "Quintal", Type: model.SeasonRabi},
	"Mustard":      {Name: "Mustard", CostPerAcre: 16000, YieldPerAcre: 8, PricePerUnit: 5650, Unit: "Quintal", Type: model.SeasonRabi},
	"Soybean":      {Name: "Soybean", CostPerAcre: 20000, YieldPerAcre: 10, PricePerUnit: 4600, Unit: "Quintal", Type: model.SeasonKharif},
}

// LookupCrop returns the economics of a crop and whether it is in the table
func LookupCrop(name string) (model.CropEconomics, bool) {
	c, ok := cropTable[name]
	return c, ok
}

// economicsFor never fails: unknown crops use the reference crop
func economicsFor(name string) model.CropEconomics {
	if c, ok := cropTable[name]; ok {
		return c
	}
	return cropTable[DefaultCrop]
}

// Crops returns the reference table sorted by name
func Crops() []model.CropEconomics {
	crops := make([]model.CropEconomics, 0, len(cropTable))
	for _, c := range cropTable {
		crops = append(crops, c)
	}
	sort.Slice(crops, func(i, j int) bool { return crops[i].Name < crops[j].Name })
	return crops
}
