package indicator

import "stockpulse/internal/model"

// Default periods used by ComputeAll.
const (
	DefaultRSIPeriod       = 14
	DefaultMACDFast        = 12
	DefaultMACDSlow        = 26
	DefaultMACDSignal      = 9
	DefaultBollingerPeriod = 20
	DefaultBollingerK      = 2.0

	// The 200-SMA is only worth computing on long series.
	longSMAThreshold = 200
)

// ComputeAll runs the full indicator set with default periods over a
// price series. The 200-period SMA is computed only when the series has
// at least 200 points.
func ComputeAll(points []model.PricePoint) Set {
	prices := model.Prices(points)

	set := Set{
		SMA20:     SMA(prices, 20),
		SMA50:     SMA(prices, 50),
		EMA12:     EMA(prices, 12),
		EMA26:     EMA(prices, 26),
		RSI:       RSI(prices, DefaultRSIPeriod),
		MACD:      MACD(prices, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal),
		Bollinger: BollingerBands(prices, DefaultBollingerPeriod, DefaultBollingerK),
	}
	if len(prices) >= longSMAThreshold {
		set.SMA200 = SMA(prices, longSMAThreshold)
	}
	return set
}
