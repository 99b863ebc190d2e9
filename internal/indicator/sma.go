package indicator

// SMA computes the Simple Moving Average with the given period.
// Index i (i >= period-1) holds the arithmetic mean of the trailing
// period prices; earlier indices are nil. Returns nil if the series is
// shorter than the period.
func SMA(prices []float64, period int) Series {
	if period <= 0 || len(prices) < period {
		return nil
	}

	out := make(Series, len(prices))
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out[i] = value(sum / float64(period))
		}
	}
	return out
}
