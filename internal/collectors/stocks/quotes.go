package stocks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"daily-intel/internal/api"
	"daily-intel/internal/errs"
	"daily-intel/internal/types"
)

// QuoteProvider prices one exchange symbol given without any suffix
type QuoteProvider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (types.StockQuote, error)
}

// ChainProvider asks each provider in turn and returns the first price
type ChainProvider []QuoteProvider

func (c ChainProvider) Name() string { return "chain" }

func (c ChainProvider) Quote(ctx context.Context, symbol string) (types.StockQuote, error) {
	var failures []error
	for _, p := range c {
		q, err := p.Quote(ctx, symbol)
		if err == nil && q.CurrentPrice > 0 {
			return q, nil
		}
		if err == nil {
			err = fmt.Errorf("%s returned no price", p.Name())
		}
		failures = append(failures, fmt.Errorf("%s: %w", p.Name(), err))
	}
	if len(failures) == 0 {
		return types.StockQuote{}, errors.New("no quote providers configured")
	}
	return types.StockQuote{}, errors.Join(failures...)
}

// Chart is the reduced daily series for one ticker
type Chart struct {
	Symbol    string
	Name      string
	Price     float64
	PrevClose float64
	Closes    []float64
	Volumes   []float64
}

// YahooProvider reads the public v8 chart endpoint
type YahooProvider struct {
	client   *api.Client
	chartURL string
	suffix   string
}

func NewYahooProvider(client *api.Client, chartURL, suffix string) *YahooProvider {
	return &YahooProvider{client: client, chartURL: chartURL, suffix: suffix}
}

func (y *YahooProvider) Name() string { return "Yahoo Finance" }

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				LongName           string  `json:"longName"`
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Chart fetches the series for a full ticker such as "TCS.NS" or "^NSEI"
func (y *YahooProvider) Chart(ctx context.Context, ticker string) (*Chart, error) {
	target := fmt.Sprintf(y.chartURL, url.PathEscape(ticker))
	resp, err := y.client.GET(ctx, target, api.YahooFinanceHeaders())
	if err != nil {
		return nil, err
	}

	var body chartResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, err
	}
	if body.Chart.Error != nil {
		return nil, errs.Malformed(fmt.Sprintf("chart %s: %s", ticker, body.Chart.Error.Description), nil)
	}
	if len(body.Chart.Result) == 0 {
		return nil, errs.Malformed("chart "+ticker+": empty result", nil)
	}

	r := body.Chart.Result[0]
	c := &Chart{
		Symbol:    r.Meta.Symbol,
		Name:      r.Meta.LongName,
		Price:     r.Meta.RegularMarketPrice,
		PrevClose: r.Meta.ChartPreviousClose,
	}
	if c.Name == "" {
		c.Name = r.Meta.ShortName
	}
	if len(r.Indicators.Quote) > 0 {
		q := r.Indicators.Quote[0]
		// Halted sessions come back as nulls
		for i, v := range q.Close {
			if v == nil {
				continue
			}
			c.Closes = append(c.Closes, *v)
			vol := 0.0
			if i < len(q.Volume) && q.Volume[i] != nil {
				vol = *q.Volume[i]
			}
			c.Volumes = append(c.Volumes, vol)
		}
	}
	if n := len(c.Closes); n > 0 {
		if c.Price == 0 {
			c.Price = c.Closes[n-1]
		}
		if n > 1 {
			c.PrevClose = c.Closes[n-2]
		}
	}
	if c.Price <= 0 {
		return nil, errs.Malformed("chart "+ticker+": no price", nil)
	}
	return c, nil
}

func (y *YahooProvider) Quote(ctx context.Context, symbol string) (types.StockQuote, error) {
	c, err := y.Chart(ctx, symbol+y.suffix)
	if err != nil {
		return types.StockQuote{}, err
	}

	q := types.StockQuote{
		Symbol:       symbol,
		Name:         c.Name,
		CurrentPrice: round2(c.Price),
		Source:       y.Name(),
	}
	if c.PrevClose > 0 {
		q.Change = round2(c.Price - c.PrevClose)
		q.ChangePercent = round2((c.Price - c.PrevClose) / c.PrevClose * 100)
	}
	if n := len(c.Volumes); n > 0 {
		q.Volume = int64(c.Volumes[n-1])
	}

	q.Score = OverallScore(MomentumScore(c.Closes), VolumeScore(c.Volumes), VolatilityScore(c.Closes))
	q.Recommendation = RecommendationFor(q.Score)
	return q, nil
}

// KiteProvider prices symbols through the Kite Connect quote API. It needs a
// valid daily access token.
type KiteProvider struct {
	kc       *kiteconnect.Client
	exchange string
}

func NewKiteProvider(apiKey, accessToken, exchange string, httpClient *http.Client) *KiteProvider {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	if httpClient != nil {
		kc.SetHTTPClient(httpClient)
	}
	return &KiteProvider{kc: kc, exchange: exchange}
}

func (k *KiteProvider) Name() string { return "Kite Connect" }

func (k *KiteProvider) Quote(ctx context.Context, symbol string) (types.StockQuote, error) {
	if err := ctx.Err(); err != nil {
		return types.StockQuote{}, err
	}

	instrument := k.exchange + ":" + symbol
	quotes, err := k.kc.GetQuote(instrument)
	if err != nil {
		return types.StockQuote{}, errs.Transient("kite quote "+instrument, err)
	}
	raw, ok := quotes[instrument]
	if !ok {
		return types.StockQuote{}, errs.Malformed("kite quote missing "+instrument, nil)
	}

	q := types.StockQuote{
		Symbol:       symbol,
		Name:         symbol,
		CurrentPrice: round2(raw.LastPrice),
		Change:       round2(raw.NetChange),
		Volume:       int64(raw.Volume),
		Source:       k.Name(),
	}
	if raw.OHLC.Close > 0 {
		q.ChangePercent = round2(raw.NetChange / raw.OHLC.Close * 100)
	}
	q.Score = ChangeScore(q.ChangePercent)
	q.Recommendation = ChangeRecommendation(q.ChangePercent)
	return q, nil
}
