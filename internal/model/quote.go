package model

import "stockpulse/internal/markethours"

// Quote is a point-in-time price snapshot for one instrument.
// Quotes are ephemeral: they are streamed and evaluated, never persisted
// (the Redis cache keeps them only for a few seconds).
type Quote struct {
	Symbol        string              `json:"symbol"`
	Price         float64             `json:"price"`
	PreviousClose float64             `json:"previousClose"`
	Change        float64             `json:"change"`
	ChangePercent float64             `json:"changePercent"`
	Volume        int64               `json:"volume"`
	VolumeLabel   string              `json:"volumeLabel"`
	DayHigh       float64             `json:"dayHigh"`
	DayLow        float64             `json:"dayLow"`
	MarketCap     float64             `json:"marketCap,omitempty"`
	Timestamp     int64               `json:"timestamp"` // epoch millis
	MarketSession markethours.Session `json:"marketSession"`
}

// PricePoint is one entry of a chronological price series. The order of
// a []PricePoint is significant — indicator output is zipped back to it
// purely by index.
type PricePoint struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// Prices extracts the price column from a series.
func Prices(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}
