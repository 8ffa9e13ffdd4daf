package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"SignalBench/internal/model"
)

// RESTFetcher reads daily bars from a JSON bar API that answers
// GET {BaseURL}/api/v1/bars/daily?symbol=..&limit=.. with an array of
// {timestamp, open, high, low, close, volume} objects. Timestamps may be
// unix seconds or date strings.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.RawBar, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), days)
	body, err := getBody(ctx, f.Client, endpoint, func(req *http.Request) {
		if f.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+f.APIKey)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode bars: invalid json")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return nil, fmt.Errorf("decode bars: expected array")
	}

	var bars []model.RawBar
	doc.ForEach(func(_, row gjson.Result) bool {
		bars = append(bars, model.RawBar{
			Date:   restTime(row.Get("timestamp")),
			Open:   number(row.Get("open")),
			High:   number(row.Get("high")),
			Low:    number(row.Get("low")),
			Close:  number(row.Get("close")),
			Volume: number(row.Get("volume")),
		})
		return true
	})
	return bars, nil
}

func restTime(v gjson.Result) time.Time {
	switch v.Type {
	case gjson.Number:
		return time.Unix(v.Int(), 0).UTC()
	case gjson.String:
		return parseDate(v.String())
	default:
		return time.Time{}
	}
}
