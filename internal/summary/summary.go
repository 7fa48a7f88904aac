// Package summary turns a collected report bundle into a short executive
// summary through an optional language model.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"daily-intel/internal/types"
)

const headlinesPerCategory = 3

// Prompt renders the parts of bundle worth summarizing as plain text
func Prompt(b *types.ReportBundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Daily digest for %s, %s.\n", b.Day, b.Date)

	if b.HasNews {
		cats := make([]string, 0, len(b.News))
		for c := range b.News {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			items := b.News[c]
			if len(items) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "\n%s news:\n", capitalize(c))
			for i, it := range items {
				if i == headlinesPerCategory {
					break
				}
				fmt.Fprintf(&sb, "- %s (%s)\n", it.Title, it.Source)
			}
		}
	}

	if b.HasMarketData && b.Stocks != nil {
		m := b.Stocks.Market
		fmt.Fprintf(&sb, "\nMarket: %s %.2f (%+.2f%%), breadth %s, trend %s.\n",
			m.Index, m.Value, m.ChangePercent, b.Stocks.Analysis.Sentiment, b.Stocks.Analysis.Trend)
		for _, q := range b.Stocks.Gainers {
			fmt.Fprintf(&sb, "- Gainer %s %+.2f%%\n", q.Name, q.ChangePercent)
		}
		for _, q := range b.Stocks.Losers {
			fmt.Fprintf(&sb, "- Loser %s %+.2f%%\n", q.Name, q.ChangePercent)
		}
	}

	if b.HasJobs && len(b.Jobs) > 0 {
		fmt.Fprintf(&sb, "\nTop roles:\n")
		for i, j := range b.Jobs {
			if i == headlinesPerCategory {
				break
			}
			fmt.Fprintf(&sb, "- %s at %s, %s\n", j.Title, j.Company, j.Location)
		}
	}

	if b.HasSAPInsights && b.SAP != nil {
		fmt.Fprintf(&sb, "\nSAP:\n")
		for i, in := range b.SAP.News {
			if i == headlinesPerCategory {
				break
			}
			fmt.Fprintf(&sb, "- %s\n", in.Title)
		}
	}

	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
