// Package indicator computes technical indicators over historical price
// series for charting.
//
// Every function takes the full price series and returns arrays of
// exactly the same length as the input, padded with nil where not
// enough history exists yet. Consumers zip indicator arrays back to
// price points purely by index, so that alignment is the load-bearing
// contract of this package: a function either returns a full-length
// array or no result at all, never a shorter one.
package indicator

// Series is one indicator column, index-aligned with the input prices.
// A nil entry means "no value yet" and marshals to JSON null.
type Series []*float64

// Set holds all indicator columns computed for one price series.
// Absent indicators (input too short) are nil/zero-length.
type Set struct {
	SMA20  Series `json:"sma20,omitempty"`
	SMA50  Series `json:"sma50,omitempty"`
	SMA200 Series `json:"sma200,omitempty"`
	EMA12  Series `json:"ema12,omitempty"`
	EMA26  Series `json:"ema26,omitempty"`
	RSI    Series `json:"rsi,omitempty"`

	MACD      *MACDResult      `json:"macd,omitempty"`
	Bollinger *BollingerResult `json:"bollingerBands,omitempty"`
}

// MACDResult holds the three MACD columns.
type MACDResult struct {
	MACD      Series `json:"MACD"`
	Signal    Series `json:"signal"`
	Histogram Series `json:"histogram"`
}

// BollingerResult holds the three Bollinger Band columns.
type BollingerResult struct {
	Upper  Series `json:"upper"`
	Middle Series `json:"middle"`
	Lower  Series `json:"lower"`
}

func value(v float64) *float64 { return &v }
