package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"SignalBench/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooRange picks the smallest chart range covering days.
func yahooRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	case days <= 1825:
		return "5y"
	default:
		return "max"
	}
}

func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.RawBar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), yahooRange(days))

	body, err := getBody(ctx, f.Client, u, func(req *http.Request) {
		req.Header.Set("User-Agent", "Mozilla/5.0")
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo: %w", err)
	}
	return parseYahooChart(body)
}

// parseYahooChart reads the chart API payload. Yahoo reports holidays and
// gaps as null quote entries, which are kept as nil fields.
func parseYahooChart(body []byte) ([]model.RawBar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("yahoo: invalid json")
	}
	doc := gjson.ParseBytes(body)
	if desc := doc.Get("chart.error.description"); desc.Exists() {
		return nil, fmt.Errorf("yahoo api error: %s", desc.String())
	}
	result := doc.Get("chart.result.0")
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make([]model.RawBar, len(timestamps))
	for i, ts := range timestamps {
		bars[i] = model.RawBar{
			Date:   time.Unix(ts.Int(), 0).UTC(),
			Open:   numberAt(opens, i),
			High:   numberAt(highs, i),
			Low:    numberAt(lows, i),
			Close:  numberAt(closes, i),
			Volume: numberAt(volumes, i),
		}
	}
	return bars, nil
}

func numberAt(values []gjson.Result, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return number(values[i])
}

func number(v gjson.Result) *float64 {
	if v.Type != gjson.Number {
		return nil
	}
	n := v.Float()
	return &n
}

func getBody(ctx context.Context, client *http.Client, u string, decorate func(*http.Request)) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if decorate != nil {
		decorate(req)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
