package report

import (
	"strings"
	"time"

	"daily-intel/internal/types"
)

// Inputs carries collector output into Assemble. A nil result means the
// section was not planned for the day.
type Inputs struct {
	RunID   string
	News    *types.Result[types.NewsReport]
	Stocks  *types.Result[*types.StockReport]
	Jobs    *types.Result[[]types.JobListing]
	SAP     *types.Result[*types.SAPReport]
	Career  *types.Result[*types.CareerReport]
	Summary string
}

// Assemble merges section results into a bundle and stamps it with now,
// which should already be in the report timezone. It has no side effects.
func Assemble(in Inputs, now time.Time) *types.ReportBundle {
	b := &types.ReportBundle{
		RunID:       in.RunID,
		GeneratedAt: now,
		Date:        now.Format("January 02, 2006"),
		Day:         now.Format("Monday"),
		Time:        now.Format("03:04 PM MST"),
		News:        types.NewsReport{},
	}

	if in.News != nil {
		if in.News.Data != nil {
			b.News = in.News.Data
		}
		for _, items := range b.News {
			if len(items) > 0 {
				b.HasNews = true
				break
			}
		}
		noteFallback(b, "news", in.News.UsedFallback)
	}

	if in.Stocks != nil && in.Stocks.Data != nil {
		s := in.Stocks.Data
		b.Stocks = s
		b.HasMarketData = len(s.LargeCap)+len(s.MidCap)+len(s.SmallCap)+len(s.Gainers)+len(s.Losers) > 0
		for _, funds := range s.MutualFunds {
			if len(funds) > 0 {
				b.HasMutualFunds = true
				break
			}
		}
		noteFallback(b, "stocks", in.Stocks.UsedFallback)
	}

	if in.Jobs != nil {
		b.Jobs = in.Jobs.Data
		b.HasJobs = len(b.Jobs) > 0
		noteFallback(b, "jobs", in.Jobs.UsedFallback)
	}

	if in.SAP != nil && in.SAP.Data != nil {
		b.SAP = in.SAP.Data
		b.HasSAPInsights = len(b.SAP.News)+len(b.SAP.Sections) > 0
		noteFallback(b, "sap", in.SAP.UsedFallback)
	}

	if in.Career != nil && in.Career.Data != nil {
		c := in.Career.Data
		b.Career = c
		b.HasCareer = len(c.Skills)+len(c.Paths)+len(c.Roadmap)+len(c.Predictions) > 0
		noteFallback(b, "career", in.Career.UsedFallback)
	}

	if s := strings.TrimSpace(in.Summary); s != "" {
		b.Summary = s
		b.HasSummary = true
	}

	return b
}

// Subject is the delivery subject line for a bundle.
func Subject(title string, b *types.ReportBundle) string {
	if title == "" {
		title = "Daily Intelligence Report"
	}
	return title + " - " + b.Date
}

func noteFallback(b *types.ReportBundle, section string, used bool) {
	if used {
		b.Fallbacks = append(b.Fallbacks, section)
	}
}
