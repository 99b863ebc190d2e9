package indicator

// MACD computes the Moving Average Convergence Divergence:
// MACD line = EMA(fast) − EMA(slow), elementwise where both are
// defined; signal line = EMA of the MACD line with the signal period;
// histogram = MACD − signal. All three columns are input-length and
// nil-padded. Returns nil if the series is shorter than slow+signal.
func MACD(prices []float64, fast, slow, signal int) *MACDResult {
	if fast <= 0 || slow <= 0 || signal <= 0 || len(prices) < slow+signal {
		return nil
	}

	emaFast := EMA(prices, fast)
	emaSlow := EMA(prices, slow)

	n := len(prices)
	macd := make(Series, n)
	for i := 0; i < n; i++ {
		if emaFast[i] != nil && emaSlow[i] != nil {
			macd[i] = value(*emaFast[i] - *emaSlow[i])
		}
	}

	// The MACD line is defined from index slow-1 onward. Run the signal
	// EMA over that defined suffix and shift it back into alignment.
	start := slow - 1
	defined := make([]float64, 0, n-start)
	for i := start; i < n; i++ {
		defined = append(defined, *macd[i])
	}
	sigDefined := EMA(defined, signal)

	sig := make(Series, n)
	hist := make(Series, n)
	for i, v := range sigDefined {
		if v == nil {
			continue
		}
		idx := start + i
		sig[idx] = v
		hist[idx] = value(*macd[idx] - *v)
	}

	return &MACDResult{MACD: macd, Signal: sig, Histogram: hist}
}
