package stocks

import (
	"strings"

	"daily-intel/internal/types"
)

var sampleFunds = map[string][]types.MutualFund{
	"large_cap": {
		{Name: "Axis Bluechip Fund", NAV: 45.50, Return1Y: 12.5, Rating: 5},
		{Name: "HDFC Top 100 Fund", NAV: 650.25, Return1Y: 11.8, Rating: 4},
		{Name: "ICICI Pru Bluechip Fund", NAV: 55.30, Return1Y: 11.2, Rating: 4},
	},
	"mid_cap": {
		{Name: "DSP Midcap Fund", NAV: 85.30, Return1Y: 15.2, Rating: 5},
		{Name: "HDFC Mid-Cap Opportunities", NAV: 120.45, Return1Y: 14.8, Rating: 4},
		{Name: "Axis Midcap Fund", NAV: 45.60, Return1Y: 14.1, Rating: 4},
	},
	"small_cap": {
		{Name: "SBI Small Cap Fund", NAV: 120.45, Return1Y: 18.7, Rating: 5},
		{Name: "Axis Small Cap Fund", NAV: 55.60, Return1Y: 17.3, Rating: 4},
		{Name: "DSP Small Cap Fund", NAV: 85.75, Return1Y: 16.8, Rating: 4},
	},
	"flexi_cap": {
		{Name: "Parag Parikh Flexi Cap", NAV: 55.60, Return1Y: 14.3, Rating: 5},
		{Name: "PGIM India Flexi Cap", NAV: 25.30, Return1Y: 13.8, Rating: 4},
		{Name: "HDFC Flexi Cap Fund", NAV: 85.45, Return1Y: 13.2, Rating: 4},
	},
}

func fallbackFunds(category string, count int) []types.MutualFund {
	src, ok := sampleFunds[category]
	if !ok {
		src = sampleFunds["large_cap"]
	}
	if count > 0 && count < len(src) {
		src = src[:count]
	}
	out := make([]types.MutualFund, len(src))
	for i, f := range src {
		f.Category = category
		f.Source = "Curated"
		out[i] = f
	}
	return out
}

// fundSlug maps "large_cap" to the selector path segment "large-cap-fund"
func fundSlug(category string) string {
	return strings.ReplaceAll(category, "_", "-") + "-fund"
}

func defaultOutlook() types.Outlook {
	return types.Outlook{
		Themes: []types.Theme{
			{Name: "Digital Transformation", Sectors: []string{"IT Services", "Fintech"}, Note: "Rapid adoption of cloud, AI and fintech solutions across sectors."},
			{Name: "Green Energy", Sectors: []string{"Power", "Auto", "Infrastructure"}, Note: "Policy push towards renewables, EVs and sustainable infrastructure."},
			{Name: "Healthcare Innovation", Sectors: []string{"Pharma", "Diagnostics"}, Note: "Growth in pharma, diagnostics and health-tech led by demographic shifts."},
			{Name: "Financial Inclusion", Sectors: []string{"Banking", "Insurance"}, Note: "Broader reach of banking, insurance and fintech in rural and urban markets."},
			{Name: "Manufacturing Revival", Sectors: []string{"Capital Goods", "Electronics"}, Note: "PLI schemes and infrastructure spend boosting domestic manufacturing."},
			{Name: "Consumption Growth", Sectors: []string{"FMCG", "Consumer Durables"}, Note: "Rising middle-class spending in discretionary and staples."},
		},
		Risks: []string{
			"Global inflation and interest rate volatility",
			"Geopolitical tensions (Russia/Ukraine, China/US)",
			"Regulatory changes in key sectors",
			"Climate events and supply chain disruptions",
		},
	}
}
