package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stockpulse/internal/markethours"
	"stockpulse/internal/model"
)

// ChartAPISource fetches quotes from a Yahoo-style chart endpoint
// (GET {base}/v8/finance/chart/{symbol}).
type ChartAPISource struct {
	baseURL string
	client  *http.Client
	clock   markethours.Clock
}

// NewChartAPISource creates a Source backed by the chart HTTP API.
// The clock is used for market-session classification on each quote.
func NewChartAPISource(baseURL string, clock markethours.Clock) *ChartAPISource {
	return &ChartAPISource{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		clock: clock,
	}
}

// chartResponse mirrors only the fields this service reads. Decoding
// into it (rather than walking a map) is the validation boundary: a
// payload that does not fit this shape is rejected as unavailable.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartMeta struct {
	Symbol               string   `json:"symbol"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	PreviousClose        *float64 `json:"previousClose"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	RegularMarketDayHigh float64  `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64  `json:"regularMarketDayLow"`
	RegularMarketVolume  int64    `json:"regularMarketVolume"`
	MarketCap            float64  `json:"marketCap"`
}

// Fetch retrieves the current quote for one symbol. Any transport,
// decode or validation failure comes back wrapped in ErrUnavailable.
func (s *ChartAPISource) Fetch(ctx context.Context, symbol string) (model.Quote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d", s.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.Quote{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Quote{}, fmt.Errorf("%w: %s: status %d", ErrUnavailable, symbol, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.Quote{}, fmt.Errorf("%w: %s: decode: %v", ErrUnavailable, symbol, err)
	}

	meta, err := validate(symbol, payload)
	if err != nil {
		return model.Quote{}, err
	}

	return s.toQuote(symbol, meta), nil
}

// validate enforces the parse boundary: a usable response has exactly
// one result with a present, positive market price.
func validate(symbol string, payload chartResponse) (chartMeta, error) {
	if e := payload.Chart.Error; e != nil {
		return chartMeta{}, fmt.Errorf("%w: %s: upstream error %s", ErrUnavailable, symbol, e.Code)
	}
	if len(payload.Chart.Result) == 0 {
		return chartMeta{}, fmt.Errorf("%w: %s: empty result", ErrUnavailable, symbol)
	}
	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil || *meta.RegularMarketPrice <= 0 {
		return chartMeta{}, fmt.Errorf("%w: %s: missing market price", ErrUnavailable, symbol)
	}
	return meta, nil
}

func (s *ChartAPISource) toQuote(symbol string, meta chartMeta) model.Quote {
	price := *meta.RegularMarketPrice

	// The upstream reports change=0 outside trading hours, so derive it
	// locally from the previous close.
	prevClose := price
	if meta.PreviousClose != nil {
		prevClose = *meta.PreviousClose
	} else if meta.ChartPreviousClose != nil {
		prevClose = *meta.ChartPreviousClose
	}

	change := price - prevClose
	changePct := 0.0
	if prevClose != 0 {
		changePct = change / prevClose * 100
	}

	now := s.clock.Now()
	return model.Quote{
		Symbol:        symbol,
		Price:         price,
		PreviousClose: prevClose,
		Change:        change,
		ChangePercent: changePct,
		Volume:        meta.RegularMarketVolume,
		VolumeLabel:   FormatVolume(meta.RegularMarketVolume),
		DayHigh:       meta.RegularMarketDayHigh,
		DayLow:        meta.RegularMarketDayLow,
		MarketCap:     meta.MarketCap,
		Timestamp:     now.UnixMilli(),
		MarketSession: markethours.Classify(now),
	}
}
