package jobs

import (
	"time"

	"daily-intel/internal/types"
)

var curated = []types.JobListing{
	{
		Title:        "SAP Finance Architect",
		Company:      "Tech Solutions Inc",
		Location:     "Bangalore, India",
		PackageRange: "25-30 LPA",
		Experience:   "8-12 years",
		Requirements: []string{"SAP FICO", "S/4HANA", "Finance transformation experience"},
		Description:  "Lead SAP Finance implementations and transformations",
		URL:          "https://www.linkedin.com/jobs/search/?keywords=SAP%20Finance%20Architect",
		Source:       "LinkedIn",
	},
	{
		Title:        "SAP B2P Lead",
		Company:      "Global Consulting",
		Location:     "Hyderabad, India",
		PackageRange: "22-28 LPA",
		Experience:   "6-10 years",
		Requirements: []string{"SAP Ariba", "B2P processes", "Procurement"},
		Description:  "Lead Buy-to-Pay workstream in large SAP implementations",
		URL:          "https://www.linkedin.com/jobs/search/?keywords=SAP%20B2P%20Lead",
		Source:       "LinkedIn",
	},
	{
		Title:        "SAP Program Lead",
		Company:      "Sample Company",
		Location:     "Mumbai, India",
		PackageRange: "20-25 LPA",
		Experience:   "5-8 years",
		Requirements: []string{"SAP implementation", "Team leadership"},
		Description:  "Opportunity in SAP Program Lead role",
		URL:          "https://www.naukri.com/sap-program-lead-jobs",
		Source:       "Naukri",
	},
	{
		Title:        "Program Lead - SAP Finance",
		Company:      "Enterprise Solutions",
		Location:     "Chennai, India",
		PackageRange: "30-35 LPA",
		Experience:   "10+ years",
		Requirements: []string{"SAP S/4HANA", "Program management", "Finance domain"},
		Description:  "Lead large-scale SAP finance transformation programs",
		URL:          "https://in.indeed.com/q-sap-finance-program-lead-jobs.html",
		Source:       "Indeed",
	},
}

func sampleListings(now time.Time) []types.JobListing {
	out := make([]types.JobListing, len(curated))
	for i, j := range curated {
		j.PostedAt = now
		out[i] = j
	}
	return out
}
