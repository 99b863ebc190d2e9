package indicator

// EMA computes the Exponential Moving Average with the given period.
// Smoothing factor is 2/(period+1). The value at index period-1 is
// seeded with the SMA of the first period prices, then the usual
// recurrence applies. Earlier indices are nil. Returns nil if the
// series is shorter than the period.
func EMA(prices []float64, period int) Series {
	if period <= 0 || len(prices) < period {
		return nil
	}

	out := make(Series, len(prices))
	alpha := 2.0 / float64(period+1)

	seed := 0.0
	for _, p := range prices[:period] {
		seed += p
	}
	ema := seed / float64(period)
	out[period-1] = value(ema)

	for i := period; i < len(prices); i++ {
		ema = prices[i]*alpha + ema*(1-alpha)
		out[i] = value(ema)
	}
	return out
}
