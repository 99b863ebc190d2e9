package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockpulse/internal/markethours"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// Monday 10:00 IST — inside the regular session.
var openClock = fixedClock{time.Date(2025, 6, 16, 10, 0, 0, 0, markethours.IST)}

func chartBody(price, prevClose float64, volume int64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{
		"symbol":"RELIANCE.NS",
		"regularMarketPrice":%f,
		"previousClose":%f,
		"regularMarketDayHigh":%f,
		"regularMarketDayLow":%f,
		"regularMarketVolume":%d
	}}],"error":null}}`, price, prevClose, price+5, price-5, volume)
}

func TestChartAPISource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/RELIANCE.NS" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, chartBody(2850.5, 2800.0, 25000000))
	}))
	defer srv.Close()

	src := NewChartAPISource(srv.URL, openClock)
	q, err := src.Fetch(context.Background(), "RELIANCE.NS")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if q.Price != 2850.5 || q.PreviousClose != 2800.0 {
		t.Errorf("price=%v prevClose=%v", q.Price, q.PreviousClose)
	}
	if diff := q.Change - 50.5; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("change=%v, want 50.5", q.Change)
	}
	wantPct := 50.5 / 2800.0 * 100
	if diff := q.ChangePercent - wantPct; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("changePercent=%v, want %v", q.ChangePercent, wantPct)
	}
	if q.VolumeLabel != "2.5Cr" {
		t.Errorf("volumeLabel=%q, want 2.5Cr", q.VolumeLabel)
	}
	if q.MarketSession != markethours.SessionOpen {
		t.Errorf("marketSession=%s, want OPEN", q.MarketSession)
	}
}

func TestChartAPISource_MissingPriceRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"X"}}],"error":null}}`)
	}))
	defer srv.Close()

	src := NewChartAPISource(srv.URL, openClock)
	_, err := src.Fetch(context.Background(), "X")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestChartAPISource_UpstreamErrorRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":{"code":"Not Found","description":"no data"}}}`)
	}))
	defer srv.Close()

	src := NewChartAPISource(srv.URL, openClock)
	_, err := src.Fetch(context.Background(), "BOGUS")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestChartAPISource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewChartAPISource(srv.URL, openClock)
	_, err := src.Fetch(context.Background(), "X")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestChartAPISource_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, chartBody(100, 100, 0))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	src := NewChartAPISource(srv.URL, openClock)
	if _, err := src.Fetch(ctx, "X"); err == nil {
		t.Fatal("Fetch survived a cancelled context")
	}
}

func TestFormatVolume(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{25000000, "2.5Cr"},
		{350000, "3.5L"},
		{4200, "4.2K"},
		{999, "999"},
	}
	for _, tc := range cases {
		if got := FormatVolume(tc.in); got != tc.want {
			t.Errorf("FormatVolume(%d)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
