package stocks

import (
	"math"
	"regexp"
	"strconv"

	"daily-intel/internal/types"
)

// Sub-scores share the [0,10] range. They take plain series so they can be
// tested without any upstream.

// VolumeScore compares the last volume with the series mean: a day at the
// average scores 5, twice the average or more scores 10.
func VolumeScore(volumes []float64) float64 {
	if len(volumes) == 0 {
		return 5
	}
	avg := mean(volumes)
	if avg <= 0 {
		return 5
	}
	return clamp(volumes[len(volumes)-1] / avg * 5)
}

// MomentumScore centres the mean daily return (in percent) on 5.
func MomentumScore(closes []float64) float64 {
	returns := dailyReturns(closes)
	if len(returns) == 0 {
		return 5
	}
	return clamp(mean(returns)*100 + 5)
}

// VolatilityScore drops two points per percent of daily return deviation.
func VolatilityScore(closes []float64) float64 {
	returns := dailyReturns(closes)
	if len(returns) < 2 {
		return 5
	}
	return clamp(10 - stddev(returns)*100*2)
}

// OverallScore blends the sub-scores. Each input is clamped first and the
// result is held in [0,10].
func OverallScore(momentum, volume, volatility float64) float64 {
	s := clamp(momentum)*0.4 + clamp(volume)*0.3 + clamp(volatility)*0.2 + 0.5
	return round1(clamp(s))
}

func RecommendationFor(score float64) types.Recommendation {
	switch {
	case score >= 8:
		return types.StrongBuy
	case score >= 6:
		return types.Buy
	case score >= 4:
		return types.Hold
	default:
		return types.Sell
	}
}

// ChangeScore is the fallback score for rows that only carry a day change.
func ChangeScore(changePercent float64) float64 {
	switch {
	case changePercent > 5:
		return 8
	case changePercent > 2:
		return 7
	case changePercent > 0:
		return 6
	case changePercent > -2:
		return 5
	case changePercent > -5:
		return 4
	default:
		return 3
	}
}

func ChangeRecommendation(changePercent float64) types.Recommendation {
	switch {
	case changePercent > 5:
		return types.StrongBuy
	case changePercent > 2:
		return types.Buy
	case changePercent > -2:
		return types.Hold
	default:
		return types.Sell
	}
}

// Analyze summarizes breadth across the cap buckets.
func Analyze(buckets ...[]types.StockQuote) types.MarketAnalysis {
	var a types.MarketAnalysis
	total := 0
	for _, quotes := range buckets {
		for _, q := range quotes {
			total++
			switch {
			case q.Change > 0:
				a.Advancers++
			case q.Change < 0:
				a.Decliners++
			}
		}
	}

	a.Sentiment = "Negative"
	a.Trend = "Neutral"
	if total == 0 {
		return a
	}

	a.PositiveRatio = round2(float64(a.Advancers) / float64(total))
	if a.Advancers*2 > total {
		a.Sentiment = "Positive"
	}
	switch {
	case a.PositiveRatio > 0.6:
		a.Trend = "Bullish"
	case a.PositiveRatio < 0.4:
		a.Trend = "Bearish"
	}
	return a
}

var nonNumeric = regexp.MustCompile(`[^\d.-]`)

// CleanNumber parses "1,234.50", "+2.3%" and similar cells. Garbage is 0.
func CleanNumber(text string) float64 {
	v, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(text, ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

var scID = regexp.MustCompile(`sc_id=([A-Z0-9]+)`)

// SymbolFromLink extracts the MoneyControl sc_id from a quote link
func SymbolFromLink(href string) string {
	if m := scID.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}

func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (closes[i]-closes[i-1])/closes[i-1])
	}
	return out
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation
func stddev(xs []float64) float64 {
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 5
	}
	return math.Max(0, math.Min(10, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
