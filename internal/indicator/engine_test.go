package indicator

import (
	"errors"
	"testing"

	"stockpulse/internal/model"
)

func series(n int) []model.PricePoint {
	pts := make([]model.PricePoint, n)
	for i := range pts {
		pts[i] = model.PricePoint{Time: "t", Price: 100 + float64(i%10)}
	}
	return pts
}

func TestComputeAll_ShortSeriesSkips200SMA(t *testing.T) {
	set := ComputeAll(series(199))
	if set.SMA200 != nil {
		t.Error("SMA200 computed for a series under 200 points")
	}
	if set.SMA20 == nil || set.RSI == nil {
		t.Error("short-window indicators missing on a 199-point series")
	}
}

func TestComputeAll_LongSeriesIncludes200SMA(t *testing.T) {
	set := ComputeAll(series(200))
	if set.SMA200 == nil {
		t.Fatal("SMA200 missing on a 200-point series")
	}
	if len(set.SMA200) != 200 {
		t.Errorf("SMA200 len=%d, want 200", len(set.SMA200))
	}
}

func TestComputeAll_TinySeries(t *testing.T) {
	// 5 points: nothing but no-results, and nothing panics.
	set := ComputeAll(series(5))
	if set.SMA20 != nil || set.MACD != nil || set.Bollinger != nil {
		t.Error("indicators produced on a 5-point series")
	}
}

func TestMergeWithSeries_ZipsByIndex(t *testing.T) {
	pts := series(60)
	set := ComputeAll(pts)

	merged, err := MergeWithSeries(pts, set)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(merged) != len(pts) {
		t.Fatalf("merged len=%d, want %d", len(merged), len(pts))
	}

	// Spot-check alignment at an arbitrary defined index.
	i := 40
	if merged[i].Price != pts[i].Price {
		t.Errorf("price at %d not carried through", i)
	}
	if merged[i].SMA20 == nil || *merged[i].SMA20 != *set.SMA20[i] {
		t.Errorf("sma20 at %d not aligned", i)
	}
	if merged[5].SMA20 != nil {
		t.Error("sma20 before warm-up must be nil")
	}
}

func TestMergeWithSeries_RejectsMisalignment(t *testing.T) {
	pts := series(30)
	set := ComputeAll(pts)
	set.SMA20 = set.SMA20[:len(set.SMA20)-1] // corrupt one column

	_, err := MergeWithSeries(pts, set)
	if err == nil {
		t.Fatal("merge accepted a misaligned column")
	}
	var ae *AlignmentError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want *AlignmentError", err)
	}
	if ae.Indicator != "sma20" || ae.Got != 29 || ae.Want != 30 {
		t.Errorf("unexpected error detail: %+v", ae)
	}
}
