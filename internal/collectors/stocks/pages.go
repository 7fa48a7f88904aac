package stocks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"daily-intel/internal/types"
)

// PageReader is satisfied by *scrape.Scraper
type PageReader interface {
	Document(ctx context.Context, pageURL string, fn func(doc *goquery.Selection, base *url.URL)) error
}

// ParseMoneyControl reads the index constituents or movers table. Rows with
// fewer than four cells are skipped.
func ParseMoneyControl(doc *goquery.Selection, count int) []types.StockQuote {
	out := []types.StockQuote{}
	doc.Find("table.tbldata14 tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if count > 0 && len(out) >= count {
			return false
		}
		cells := row.Find("td")
		if cells.Length() < 4 {
			return true
		}

		first := cells.Eq(0)
		name := strings.TrimSpace(first.Find("a").First().Text())
		if name == "" {
			name = strings.TrimSpace(first.Text())
		}
		if name == "" {
			return true
		}
		href, _ := first.Find("a").Attr("href")
		symbol := SymbolFromLink(href)
		if symbol == "" {
			symbol = strings.ToUpper(strings.ReplaceAll(name, " ", ""))
		}

		change := CleanNumber(cells.Eq(2).Text())
		pct := CleanNumber(cells.Eq(3).Text())
		out = append(out, types.StockQuote{
			Symbol:         symbol,
			Name:           name,
			CurrentPrice:   CleanNumber(cells.Eq(1).Text()),
			Change:         change,
			ChangePercent:  pct,
			Score:          ChangeScore(pct),
			Recommendation: ChangeRecommendation(pct),
			Source:         "MoneyControl",
		})
		return true
	})
	return out
}

// ParseScreener reads a screen results table. Screener rows carry no live
// price so every row needs a quote lookup afterwards. Market cap and P/E are
// taken from the columns headed "Mar Cap" and "P/E" when the screen has them.
func ParseScreener(doc *goquery.Selection, count int) []types.StockQuote {
	out := []types.StockQuote{}
	table := doc.Find("table.data-table").First()
	capCol, peCol := -1, -1
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		head := strings.ToLower(strings.Join(strings.Fields(th.Text()), " "))
		switch {
		case strings.HasPrefix(head, "mar cap"):
			capCol = i
		case strings.HasPrefix(head, "p/e"):
			peCol = i
		}
	})

	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if count > 0 && len(out) >= count {
			return false
		}
		cells := row.Find("td")
		if cells.Length() < 3 {
			return true
		}
		nameCell := cells.Eq(1)
		name := strings.TrimSpace(nameCell.Text())
		if name == "" {
			return true
		}

		symbol := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
		if href, ok := nameCell.Find("a").Attr("href"); ok {
			// /company/TCS/consolidated/
			parts := strings.Split(strings.Trim(href, "/"), "/")
			if len(parts) >= 2 && parts[0] == "company" {
				symbol = parts[1]
			}
		}

		q := types.StockQuote{
			Symbol:         symbol,
			Name:           name,
			Score:          5,
			Recommendation: types.Hold,
			Source:         "Screener.in",
		}
		if capCol >= 0 && capCol < cells.Length() {
			q.MarketCap = FormatCrore(CleanNumber(cells.Eq(capCol).Text()))
		}
		if peCol >= 0 && peCol < cells.Length() {
			q.PERatio = CleanNumber(cells.Eq(peCol).Text())
		}
		out = append(out, q)
		return true
	})
	return out
}

// FormatCrore renders a market cap given in crore rupees, "" when unknown.
// Lakh crore is the unit Indian market coverage quotes large caps in.
func FormatCrore(cr float64) string {
	switch {
	case cr <= 0:
		return ""
	case cr >= 100000:
		return fmt.Sprintf("₹%.2f L Cr", cr/100000)
	default:
		return fmt.Sprintf("₹%.0f Cr", cr)
	}
}

// ParseFunds reads a fund selector table: name, NAV and one year return in
// the first three cells.
func ParseFunds(doc *goquery.Selection, category string, count int) []types.MutualFund {
	out := []types.MutualFund{}
	doc.Find("table tbody tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if count > 0 && len(out) >= count {
			return false
		}
		cells := row.Find("td")
		if cells.Length() < 3 {
			return true
		}
		name := strings.TrimSpace(cells.Eq(0).Text())
		nav := CleanNumber(cells.Eq(1).Text())
		if name == "" || nav <= 0 {
			return true
		}
		out = append(out, types.MutualFund{
			Name:     name,
			Category: category,
			NAV:      nav,
			Return1Y: CleanNumber(cells.Eq(2).Text()),
			Source:   "Value Research",
		})
		return true
	})
	return out
}
