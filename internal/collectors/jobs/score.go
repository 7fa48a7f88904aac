package jobs

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"daily-intel/internal/filter"
	"daily-intel/internal/store"
	"daily-intel/internal/types"
)

// Scorer computes the heuristic relevance of a listing. Higher is more
// relevant; the number has no other meaning.
type Scorer struct {
	keywords   []string
	titleW     float64
	descW      float64
	employers  *filter.Matcher
	employerB  float64
	seniority  *filter.Matcher
	seniorityB float64
	tiers      []store.PackageTier
}

func NewScorer(cfg store.JobsConfig) *Scorer {
	kws := make([]string, 0, len(cfg.Keywords))
	for _, k := range cfg.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kws = append(kws, k)
		}
	}
	tiers := append([]store.PackageTier(nil), cfg.PackageTiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinLPA > tiers[j].MinLPA })

	return &Scorer{
		keywords:   kws,
		titleW:     cfg.TitleWeight,
		descW:      cfg.DescriptionWeight,
		employers:  filter.NewMatcher(cfg.Employers),
		employerB:  cfg.EmployerBonus,
		seniority:  filter.NewMatcher(cfg.SeniorityKeywords),
		seniorityB: cfg.SeniorityBonus,
		tiers:      tiers,
	}
}

// Score sums keyword weights (title hits weigh more than description hits),
// the employer bonus, the package tier bonus and the seniority bonus. Every
// term is non-negative so adding text to a listing never lowers its score.
func (s *Scorer) Score(job types.JobListing) float64 {
	title := strings.ToLower(job.Title)
	desc := strings.ToLower(job.Description)

	score := 0.0
	for _, kw := range s.keywords {
		if strings.Contains(title, kw) {
			score += s.titleW
		}
		if strings.Contains(desc, kw) {
			score += s.descW
		}
	}
	if s.employers.Match(job.Company) {
		score += s.employerB
	}
	if s.seniority.Match(job.Title) {
		score += s.seniorityB
	}
	if lpa, ok := PackageLPA(job.PackageRange); ok {
		for _, t := range s.tiers {
			if lpa >= t.MinLPA {
				score += t.Bonus
				break
			}
		}
	}
	return score
}

var lpaPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:-\s*\d+(?:\.\d+)?\s*)?(?:lpa|lakhs?)`)

// PackageLPA returns the lower bound of a range like "25-30 LPA"
func PackageLPA(pkg string) (float64, bool) {
	m := lpaPattern.FindStringSubmatch(pkg)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
