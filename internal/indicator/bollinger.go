package indicator

import "math"

// BollingerBands computes a period-SMA middle band flanked by bands at
// k population standard deviations of the trailing window. All three
// columns are input-length and nil-padded. Returns nil if the series is
// shorter than the period.
func BollingerBands(prices []float64, period int, k float64) *BollingerResult {
	if period <= 0 || len(prices) < period {
		return nil
	}

	middle := SMA(prices, period)

	n := len(prices)
	upper := make(Series, n)
	lower := make(Series, n)
	for i := period - 1; i < n; i++ {
		mean := *middle[i]
		variance := 0.0
		for _, p := range prices[i-period+1 : i+1] {
			d := p - mean
			variance += d * d
		}
		band := k * math.Sqrt(variance/float64(period))
		upper[i] = value(mean + band)
		lower[i] = value(mean - band)
	}

	return &BollingerResult{Upper: upper, Middle: middle, Lower: lower}
}
