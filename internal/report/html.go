package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"daily-intel/internal/errs"
	"daily-intel/internal/types"
)

//go:embed templates/report.html
var templateFS embed.FS

// newsOrder is the display order for the configured news categories. Any
// other category follows alphabetically.
var newsOrder = []string{"global", "india", "business", "regional"}

var fundOrder = []string{"large_cap", "mid_cap", "small_cap", "flexi_cap"}

var funcs = template.FuncMap{
	"money":  func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
	"signed": func(v float64) string { return fmt.Sprintf("%+.2f", v) },
	"score":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"direction": func(v float64) string {
		switch {
		case v > 0:
			return "up"
		case v < 0:
			return "down"
		}
		return ""
	},
	"stars": func(n int) string {
		if n <= 0 {
			return "-"
		}
		return strings.Repeat("★", min(n, 5))
	},
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 02, 15:04")
	},
	"label":          label,
	"join":           strings.Join,
	"paragraphs":     paragraphs,
	"newsCategories": func(n types.NewsReport) []string { return ordered(keys(n), newsOrder) },
	"fundCategories": func(m map[string][]types.MutualFund) []string { return ordered(keys(m), fundOrder) },
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, fmt.Errorf("dict needs key/value pairs, got %d args", len(kv))
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			k, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", kv[i])
			}
			m[k] = kv[i+1]
		}
		return m, nil
	},
}

var page = template.Must(template.New("report.html").Funcs(funcs).ParseFS(templateFS, "templates/report.html"))

// RenderHTML renders the bundle as a standalone HTML document. Sections whose
// presence flag is false are omitted.
func RenderHTML(title string, b *types.ReportBundle) ([]byte, error) {
	if title == "" {
		title = "Daily Intelligence Report"
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, struct {
		Title string
		B     *types.ReportBundle
	}{title, b}); err != nil {
		return nil, errs.Render("render html", err)
	}
	return buf.Bytes(), nil
}

// label turns "large_cap" into "Large Cap".
func label(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func paragraphs(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func keys[M ~map[string]V, V any](m M) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// ordered sorts names by their position in pref, unknown names last.
func ordered(names, pref []string) []string {
	rank := make(map[string]int, len(pref))
	for i, p := range pref {
		rank[p] = i
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iok := rank[names[i]]
		rj, jok := rank[names[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return names[i] < names[j]
	})
	return names
}
