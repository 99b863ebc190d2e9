package indicator

// RSI computes the Relative Strength Index using Wilder's smoothing.
// The first period indices are nil; index period holds the first value,
// computed from the simple average of gains and losses over the first
// period deltas. A window with zero losses yields RSI=100. Output is
// bounded to [0,100]. Returns nil if the series is shorter than
// period+1 (no deltas to average).
func RSI(prices []float64, period int) Series {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}

	out := make(Series, len(prices))

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = value(rsiFrom(avgGain, avgLoss))

	p := float64(period)
	for i := period + 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = value(rsiFrom(avgGain, avgLoss))
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	v := 100.0 - 100.0/(1.0+rs)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
