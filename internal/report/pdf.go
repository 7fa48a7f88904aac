package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"daily-intel/internal/errs"
	"daily-intel/internal/types"
)

const (
	pdfFont   = "Arial"
	pdfMargin = 12.0
	lineH     = 5.0
)

type pdfRenderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// RenderPDF lays the bundle out as an A4 document with the same sections as
// the HTML report. Core fonts only cover cp1252, so other runes are dropped.
func RenderPDF(title string, b *types.ReportBundle) ([]byte, error) {
	if title == "" {
		title = "Daily Intelligence Report"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(title+" - "+b.Date, true)
	pdf.SetCreator("daily-intel", true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont(pdfFont, "I", 7)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	r := &pdfRenderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	r.header(title, b)

	if b.HasSummary {
		r.heading("Executive Summary")
		for _, p := range paragraphs(b.Summary) {
			r.text(p)
		}
	}
	if b.HasMarketData && b.Stocks != nil {
		r.market(b.Stocks)
	}
	if b.HasMutualFunds && b.Stocks != nil {
		r.funds(b.Stocks.MutualFunds)
	}
	if b.HasNews {
		r.heading("News")
		for _, cat := range ordered(keys(b.News), newsOrder) {
			items := b.News[cat]
			if len(items) == 0 {
				continue
			}
			r.subheading(label(cat))
			for _, it := range items {
				r.bullet(it.Title, fmt.Sprintf("%s | %s", it.Source, it.PublishedAt.Format("Jan 02, 15:04")))
			}
		}
	}
	if b.HasJobs {
		r.heading("Job Opportunities")
		for _, j := range b.Jobs {
			meta := []string{}
			for _, s := range []string{j.Company, j.Location, j.PackageRange, j.Source} {
				if s != "" {
					meta = append(meta, s)
				}
			}
			meta = append(meta, fmt.Sprintf("score %.1f", j.RelevanceScore))
			r.bullet(j.Title, strings.Join(meta, " | "))
		}
	}
	if b.HasSAPInsights && b.SAP != nil {
		r.heading("SAP & AI Insights")
		for _, in := range b.SAP.News {
			r.bullet(in.Title, in.Category+" | relevance "+in.Relevance)
		}
		r.sections(b.SAP.Sections)
	}
	if b.HasCareer && b.Career != nil {
		r.heading("Career Analysis")
		for _, part := range []struct {
			name string
			secs []types.InsightSection
		}{
			{"Skills in Demand", b.Career.Skills},
			{"Career Paths", b.Career.Paths},
			{"Learning Roadmap", b.Career.Roadmap},
			{"Market Predictions", b.Career.Predictions},
		} {
			if len(part.secs) == 0 {
				continue
			}
			r.subheading(part.name)
			r.sections(part.secs)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errs.Render("render pdf", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfRenderer) header(title string, b *types.ReportBundle) {
	r.pdf.SetFillColor(31, 58, 95)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont(pdfFont, "B", 16)
	r.pdf.CellFormat(0, 10, r.tr(title), "", 1, "L", true, 0, "")
	r.pdf.SetFont(pdfFont, "", 9)
	r.pdf.CellFormat(0, 6, r.tr(fmt.Sprintf("%s, %s | %s", b.Day, b.Date, b.Time)), "", 1, "L", true, 0, "")
	r.pdf.SetTextColor(34, 34, 34)
	r.pdf.Ln(4)
}

func (r *pdfRenderer) heading(s string) {
	r.pdf.Ln(3)
	r.pdf.SetFont(pdfFont, "B", 13)
	r.pdf.SetTextColor(31, 58, 95)
	r.pdf.CellFormat(0, 7, r.tr(s), "B", 1, "L", false, 0, "")
	r.pdf.SetTextColor(34, 34, 34)
	r.pdf.Ln(2)
}

func (r *pdfRenderer) subheading(s string) {
	r.pdf.Ln(1)
	r.pdf.SetFont(pdfFont, "B", 10)
	r.pdf.CellFormat(0, 6, r.tr(s), "", 1, "L", false, 0, "")
}

func (r *pdfRenderer) text(s string) {
	r.pdf.SetFont(pdfFont, "", 9)
	r.pdf.MultiCell(0, lineH, r.tr(s), "", "L", false)
	r.pdf.Ln(1)
}

func (r *pdfRenderer) bullet(title, meta string) {
	r.pdf.SetFont(pdfFont, "B", 9)
	r.pdf.MultiCell(0, lineH, r.tr("- "+title), "", "L", false)
	if meta != "" {
		r.pdf.SetFont(pdfFont, "", 7)
		r.pdf.SetTextColor(107, 114, 128)
		r.pdf.MultiCell(0, 4, r.tr("  "+meta), "", "L", false)
		r.pdf.SetTextColor(34, 34, 34)
	}
	r.pdf.Ln(1)
}

func (r *pdfRenderer) sections(secs []types.InsightSection) {
	for _, s := range secs {
		r.pdf.SetFont(pdfFont, "B", 9)
		r.pdf.MultiCell(0, lineH, r.tr(s.Heading), "", "L", false)
		r.pdf.SetFont(pdfFont, "", 9)
		for _, p := range s.Points {
			r.pdf.MultiCell(0, lineH, r.tr("  - "+p), "", "L", false)
		}
		r.pdf.Ln(1)
	}
}

func (r *pdfRenderer) market(s *types.StockReport) {
	r.heading("Market Overview")
	m := s.Market
	if m.Value > 0 {
		r.text(fmt.Sprintf("%s: %.2f (%+.2f, %+.2f%%) %s", m.Index, m.Value, m.Change, m.ChangePercent, m.Status))
	} else {
		r.text(fmt.Sprintf("%s: %s", m.Index, m.Status))
	}
	r.text(fmt.Sprintf("Sentiment %s, trend %s, %d advancing / %d declining",
		s.Analysis.Sentiment, s.Analysis.Trend, s.Analysis.Advancers, s.Analysis.Decliners))

	for _, t := range []struct {
		name string
		rows []types.StockQuote
	}{
		{"Large Cap", s.LargeCap},
		{"Mid Cap", s.MidCap},
		{"Small Cap", s.SmallCap},
		{"Top Gainers", s.Gainers},
		{"Top Losers", s.Losers},
	} {
		if len(t.rows) == 0 {
			continue
		}
		r.subheading(t.name)
		r.quoteTable(t.rows)
	}

	if len(s.Outlook.Themes) > 0 {
		r.subheading("Investment Outlook")
		for _, th := range s.Outlook.Themes {
			r.bullet(th.Name, strings.Join(th.Sectors, ", ")+" | "+th.Note)
		}
		if len(s.Outlook.Risks) > 0 {
			r.text("Risks: " + strings.Join(s.Outlook.Risks, "; "))
		}
	}
}

var quoteCols = []struct {
	head  string
	width float64
	align string
}{
	{"Stock", 52, "L"},
	{"Price", 24, "R"},
	{"Change", 34, "R"},
	{"Mkt Cap", 26, "R"},
	{"P/E", 14, "R"},
	{"Score", 14, "R"},
	{"Call", 22, "L"},
}

func (r *pdfRenderer) quoteTable(rows []types.StockQuote) {
	r.pdf.SetFont(pdfFont, "B", 8)
	r.pdf.SetFillColor(248, 250, 252)
	for _, c := range quoteCols {
		r.pdf.CellFormat(c.width, 6, c.head, "1", 0, c.align, true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont(pdfFont, "", 8)
	for _, q := range rows {
		name := q.Name
		if name == "" {
			name = q.Symbol
		}
		mcap, pe := "-", "-"
		if q.MarketCap != "" {
			// the core fonts have no rupee glyph
			mcap = strings.Replace(q.MarketCap, "₹", "Rs ", 1)
		}
		if q.PERatio > 0 {
			pe = fmt.Sprintf("%.1f", q.PERatio)
		}
		cells := []string{
			truncate(name, 32),
			fmt.Sprintf("%.2f", q.CurrentPrice),
			fmt.Sprintf("%+.2f (%+.2f%%)", q.Change, q.ChangePercent),
			mcap,
			pe,
			fmt.Sprintf("%.1f", q.Score),
			string(q.Recommendation),
		}
		for i, c := range quoteCols {
			if i == 2 {
				r.changeColor(q.Change)
			}
			r.pdf.CellFormat(c.width, 5, r.tr(cells[i]), "1", 0, c.align, false, 0, "")
			r.pdf.SetTextColor(34, 34, 34)
		}
		r.pdf.Ln(-1)
	}
	r.pdf.Ln(2)
}

func (r *pdfRenderer) funds(byCat map[string][]types.MutualFund) {
	r.heading("Mutual Funds")
	for _, cat := range ordered(keys(byCat), fundOrder) {
		funds := byCat[cat]
		if len(funds) == 0 {
			continue
		}
		r.subheading(label(cat))
		for _, f := range funds {
			r.bullet(f.Name, fmt.Sprintf("NAV %.2f | 1Y %+.2f%% | rating %d/5", f.NAV, f.Return1Y, f.Rating))
		}
	}
}

func (r *pdfRenderer) changeColor(v float64) {
	switch {
	case v > 0:
		r.pdf.SetTextColor(21, 128, 61)
	case v < 0:
		r.pdf.SetTextColor(185, 28, 28)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
