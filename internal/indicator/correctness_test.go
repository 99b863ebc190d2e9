package indicator

import (
	"math"
	"testing"
)

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f)", label, got, want, tol)
	}
}

func assertNil(t *testing.T, label string, v *float64, i int) {
	t.Helper()
	if v != nil {
		t.Errorf("%s: index %d = %.6f, want no value", label, i, *v)
	}
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// ────────────────────────────────────────────────────────────
// SMA
// ────────────────────────────────────────────────────────────

func TestSMA_Correctness(t *testing.T) {
	// SMA(3) over 10, 11, 12, 13:
	// index 2: (10+11+12)/3 = 11, index 3: (11+12+13)/3 = 12
	got := SMA([]float64{10, 11, 12, 13}, 3)
	if len(got) != 4 {
		t.Fatalf("len=%d, want 4", len(got))
	}
	assertNil(t, "SMA(3)", got[0], 0)
	assertNil(t, "SMA(3)", got[1], 1)
	assertClose(t, "SMA(3)[2]", *got[2], 11.0, 1e-9)
	assertClose(t, "SMA(3)[3]", *got[3], 12.0, 1e-9)
}

func TestSMA_TooShort(t *testing.T) {
	if got := SMA([]float64{1, 2}, 3); got != nil {
		t.Errorf("SMA on short input = %v, want nil", got)
	}
}

func TestSMA_RollingWindow(t *testing.T) {
	// Window must slide, not grow: SMA(2) of 1, 2, 10 ends at (2+10)/2 = 6.
	got := SMA([]float64{1, 2, 10}, 2)
	assertClose(t, "SMA(2)[2]", *got[2], 6.0, 1e-9)
}

// ────────────────────────────────────────────────────────────
// EMA
// ────────────────────────────────────────────────────────────

func TestEMA_SeededWithSMA(t *testing.T) {
	prices := []float64{22, 23, 21, 24, 25, 26, 23}
	period := 5

	ema := EMA(prices, period)
	sma := SMA(prices, period)

	for i := 0; i < period-1; i++ {
		assertNil(t, "EMA", ema[i], i)
	}
	assertClose(t, "EMA seed == SMA seed", *ema[period-1], *sma[period-1], 1e-9)
}

func TestEMA_Recurrence(t *testing.T) {
	// EMA(3) over 10, 11, 12, 13: alpha = 0.5
	// seed at index 2: (10+11+12)/3 = 11
	// index 3: 13*0.5 + 11*0.5 = 12
	got := EMA([]float64{10, 11, 12, 13}, 3)
	assertClose(t, "EMA(3)[2]", *got[2], 11.0, 1e-9)
	assertClose(t, "EMA(3)[3]", *got[3], 12.0, 1e-9)
}

func TestEMA_TooShort(t *testing.T) {
	if got := EMA([]float64{1, 2}, 3); got != nil {
		t.Errorf("EMA on short input = %v, want nil", got)
	}
}

// ────────────────────────────────────────────────────────────
// RSI
// ────────────────────────────────────────────────────────────

func TestRSI_MonotoneUpIs100(t *testing.T) {
	prices := ramp(30, 100, 1)
	got := RSI(prices, 14)

	for i := 0; i < 14; i++ {
		assertNil(t, "RSI", got[i], i)
	}
	for i := 14; i < len(got); i++ {
		if got[i] == nil {
			t.Fatalf("RSI[%d] missing", i)
		}
		assertClose(t, "RSI of strict uptrend", *got[i], 100.0, 1e-9)
	}
}

func TestRSI_Bounded(t *testing.T) {
	// Alternating large swings must stay inside [0,100].
	prices := make([]float64, 60)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100
		} else {
			prices[i] = 150
		}
	}
	for i, v := range RSI(prices, 14) {
		if v == nil {
			continue
		}
		if *v < 0 || *v > 100 {
			t.Errorf("RSI[%d] = %.4f out of [0,100]", i, *v)
		}
	}
}

func TestRSI_Correctness(t *testing.T) {
	// RSI(2) over 10, 11, 10, 12:
	// first two deltas: +1, -1 → avgGain=0.5, avgLoss=0.5 → RSI[2]=50
	// delta +2: avgGain=(0.5+2)/2=1.25, avgLoss=0.25 → RS=5 → RSI[3]=83.333
	got := RSI([]float64{10, 11, 10, 12}, 2)
	assertNil(t, "RSI(2)", got[0], 0)
	assertNil(t, "RSI(2)", got[1], 1)
	assertClose(t, "RSI(2)[2]", *got[2], 50.0, 1e-9)
	assertClose(t, "RSI(2)[3]", *got[3], 100.0-100.0/6.0, 1e-9)
}

func TestRSI_TooShort(t *testing.T) {
	if got := RSI(ramp(14, 1, 1), 14); got != nil {
		t.Errorf("RSI needs period+1 points, got result on %d", 14)
	}
}

// ────────────────────────────────────────────────────────────
// MACD
// ────────────────────────────────────────────────────────────

func TestMACD_TooShort(t *testing.T) {
	// slow+signal = 35 — a 34-point series must yield no result.
	if got := MACD(ramp(34, 100, 1), 12, 26, 9); got != nil {
		t.Errorf("MACD on 34 points = %+v, want nil", got)
	}
}

func TestMACD_AlignmentAndDefinition(t *testing.T) {
	prices := ramp(60, 100, 0.5)
	got := MACD(prices, 12, 26, 9)
	if got == nil {
		t.Fatal("MACD returned nil on sufficient input")
	}

	n := len(prices)
	if len(got.MACD) != n || len(got.Signal) != n || len(got.Histogram) != n {
		t.Fatalf("column lengths %d/%d/%d, want all %d",
			len(got.MACD), len(got.Signal), len(got.Histogram), n)
	}

	// MACD line defined from slow-1; signal and histogram from slow+signal-2.
	if got.MACD[24] != nil || got.MACD[25] == nil {
		t.Error("MACD line must become defined at index slow-1")
	}
	if got.Signal[32] != nil || got.Signal[33] == nil {
		t.Error("signal line must become defined at index slow+signal-2")
	}
	for i := range prices {
		if got.Histogram[i] == nil {
			continue
		}
		assertClose(t, "histogram == macd - signal",
			*got.Histogram[i], *got.MACD[i]-*got.Signal[i], 1e-9)
	}
}

// ────────────────────────────────────────────────────────────
// Bollinger Bands
// ────────────────────────────────────────────────────────────

func TestBollinger_Correctness(t *testing.T) {
	// Constant series: stddev 0, all three bands equal the price.
	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 50
	}
	got := BollingerBands(prices, 20, 2)
	if got == nil {
		t.Fatal("BollingerBands returned nil on sufficient input")
	}
	assertClose(t, "upper on flat series", *got.Upper[24], 50.0, 1e-9)
	assertClose(t, "middle on flat series", *got.Middle[24], 50.0, 1e-9)
	assertClose(t, "lower on flat series", *got.Lower[24], 50.0, 1e-9)
}

func TestBollinger_PopulationStdDev(t *testing.T) {
	// Window 2, 4 → mean 3, population stddev 1, k=2 → bands 5 and 1.
	got := BollingerBands([]float64{2, 4}, 2, 2)
	if got == nil {
		t.Fatal("BollingerBands returned nil")
	}
	assertClose(t, "upper", *got.Upper[1], 5.0, 1e-9)
	assertClose(t, "lower", *got.Lower[1], 1.0, 1e-9)
}

func TestBollinger_TooShort(t *testing.T) {
	if got := BollingerBands(ramp(19, 1, 1), 20, 2); got != nil {
		t.Errorf("BollingerBands on 19 points = %+v, want nil", got)
	}
}

// ────────────────────────────────────────────────────────────
// Length invariant
// ────────────────────────────────────────────────────────────

func TestAllColumns_MatchInputLength(t *testing.T) {
	prices := ramp(250, 100, 0.25)
	n := len(prices)

	check := func(label string, s Series) {
		t.Helper()
		if s != nil && len(s) != n {
			t.Errorf("%s: len=%d, want %d", label, len(s), n)
		}
	}
	check("SMA20", SMA(prices, 20))
	check("SMA200", SMA(prices, 200))
	check("EMA12", EMA(prices, 12))
	check("RSI", RSI(prices, 14))
	if m := MACD(prices, 12, 26, 9); m != nil {
		check("MACD", m.MACD)
		check("signal", m.Signal)
		check("histogram", m.Histogram)
	}
	if b := BollingerBands(prices, 20, 2); b != nil {
		check("bbUpper", b.Upper)
		check("bbMiddle", b.Middle)
		check("bbLower", b.Lower)
	}
}
