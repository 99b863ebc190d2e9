package indicator

import (
	"fmt"

	"stockpulse/internal/model"
)

// EnrichedPoint is one price point zipped with its indicator values.
// Undefined indicator positions marshal to JSON null so charting
// consumers stay index-aligned with the raw series.
type EnrichedPoint struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`

	SMA20  *float64 `json:"sma20"`
	SMA50  *float64 `json:"sma50"`
	SMA200 *float64 `json:"sma200"`
	EMA12  *float64 `json:"ema12"`
	EMA26  *float64 `json:"ema26"`
	RSI    *float64 `json:"rsi"`

	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macdSignal"`
	MACDHistogram *float64 `json:"macdHistogram"`

	BBUpper  *float64 `json:"bbUpper"`
	BBMiddle *float64 `json:"bbMiddle"`
	BBLower  *float64 `json:"bbLower"`
}

// AlignmentError reports an indicator column whose length does not
// match the input series. It indicates a programming defect in the
// producer, not a runtime condition to recover from.
type AlignmentError struct {
	Indicator string
	Got, Want int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("indicator %s misaligned: %d values for %d points", e.Indicator, e.Got, e.Want)
}

// MergeWithSeries zips a price series with its computed indicators by
// index, producing one enriched record per input point. Any present
// indicator column whose length differs from the series is an
// AlignmentError — never silently truncated or padded.
func MergeWithSeries(points []model.PricePoint, set Set) ([]EnrichedPoint, error) {
	n := len(points)

	type col struct {
		name string
		s    Series
	}
	cols := []col{
		{"sma20", set.SMA20},
		{"sma50", set.SMA50},
		{"sma200", set.SMA200},
		{"ema12", set.EMA12},
		{"ema26", set.EMA26},
		{"rsi", set.RSI},
	}
	if set.MACD != nil {
		cols = append(cols,
			col{"macd", set.MACD.MACD},
			col{"macdSignal", set.MACD.Signal},
			col{"macdHistogram", set.MACD.Histogram},
		)
	}
	if set.Bollinger != nil {
		cols = append(cols,
			col{"bbUpper", set.Bollinger.Upper},
			col{"bbMiddle", set.Bollinger.Middle},
			col{"bbLower", set.Bollinger.Lower},
		)
	}
	for _, c := range cols {
		if c.s != nil && len(c.s) != n {
			return nil, &AlignmentError{Indicator: c.name, Got: len(c.s), Want: n}
		}
	}

	at := func(s Series, i int) *float64 {
		if s == nil {
			return nil
		}
		return s[i]
	}

	out := make([]EnrichedPoint, n)
	for i, p := range points {
		ep := EnrichedPoint{
			Time:   p.Time,
			Price:  p.Price,
			SMA20:  at(set.SMA20, i),
			SMA50:  at(set.SMA50, i),
			SMA200: at(set.SMA200, i),
			EMA12:  at(set.EMA12, i),
			EMA26:  at(set.EMA26, i),
			RSI:    at(set.RSI, i),
		}
		if set.MACD != nil {
			ep.MACD = at(set.MACD.MACD, i)
			ep.MACDSignal = at(set.MACD.Signal, i)
			ep.MACDHistogram = at(set.MACD.Histogram, i)
		}
		if set.Bollinger != nil {
			ep.BBUpper = at(set.Bollinger.Upper, i)
			ep.BBMiddle = at(set.Bollinger.Middle, i)
			ep.BBLower = at(set.Bollinger.Lower, i)
		}
		out[i] = ep
	}
	return out, nil
}
