package upstream

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stocks-dashboard/src/helpers"
	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"
	"stocks-dashboard/src/network"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &models.MConfig{}
	cfg.Upstream.BaseURL = srv.URL
	cfg.Upstream.APIKey = "test-key"
	cfg.Network.RequestTimeout = 5
	cfg.Chart.Timezone = "America/New_York"

	netMgr := network.NewNetworkManager(cfg, logger.NewLogger("test"))
	return NewClient(cfg, netMgr), srv
}

func TestBareSymbol(t *testing.T) {
	cases := map[string]string{
		"AAPL-NASDAQ": "AAPL",
		"AAPL":        "AAPL",
		"BRK-NYSE":    "BRK",
	}
	for in, want := range cases {
		if got := BareSymbol(in); got != want {
			t.Errorf("BareSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuoteParsesStringFields(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "AAPL" {
			t.Errorf("exchange suffix not stripped: %s", r.URL.Query().Get("symbol"))
		}
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("missing apikey param")
		}
		w.Write([]byte(`{"close":"123.45","change":"-1.20","percent_change":"-0.96","previous_close":"124.65"}`))
	})

	quote, err := c.Quote("AAPL-NASDAQ")
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	if quote.Price != 123.45 {
		t.Errorf("expected price 123.45, got %v", quote.Price)
	}
	if quote.Change != -1.20 {
		t.Errorf("expected change -1.20, got %v", quote.Change)
	}
	if quote.ChangePercent != -0.96 {
		t.Errorf("expected changePercent -0.96, got %v", quote.ChangePercent)
	}
	if quote.PreviousClose != 124.65 {
		t.Errorf("expected previousClose 124.65, got %v", quote.PreviousClose)
	}
}

func TestQuoteMalformedFieldIsUpstreamError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"close":"not-a-number","change":"1","percent_change":"1","previous_close":"1"}`))
	})

	_, err := c.Quote("AAPL")
	if err == nil {
		t.Fatal("expected error for unparseable field")
	}
	var upErr *helpers.UpstreamError
	if !errorsAs(err, &upErr) {
		t.Errorf("expected UpstreamError, got %T", err)
	}
}

func TestQuoteMissingAPIKey(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider should not be called without a credential")
	})
	c.Config.Upstream.APIKey = ""

	_, err := c.Quote("AAPL")
	var cfgErr *helpers.ConfigurationError
	if !errorsAs(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestIntradaySeriesBucketsByDay(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "1min" {
			t.Errorf("expected 1min interval, got %s", r.URL.Query().Get("interval"))
		}
		if r.URL.Query().Get("outputsize") != "1170" {
			t.Errorf("expected outputsize 1170, got %s", r.URL.Query().Get("outputsize"))
		}
		w.Write([]byte(`{"values":[
			{"datetime":"2026-08-28 15:59:00","close":"101.5"},
			{"datetime":"2026-08-28 09:30:00","close":"100.0"},
			{"datetime":"2026-08-27 15:59:00","close":"99.0"}
		],"status":"ok"}`))
	})

	data, err := c.IntradaySeries("AAPL")
	if err != nil {
		t.Fatalf("IntradaySeries returned error: %v", err)
	}
	if len(data.TimeSeries) != 3 {
		t.Fatalf("expected 3 flat points, got %d", len(data.TimeSeries))
	}
	if len(data.TimeSeriesByDay) != 2 {
		t.Fatalf("expected 2 day buckets, got %d", len(data.TimeSeriesByDay))
	}
	if got := len(data.TimeSeriesByDay["2026-08-28"]); got != 2 {
		t.Errorf("expected 2 points on 2026-08-28, got %d", got)
	}
	if got := len(data.TimeSeriesByDay["2026-08-27"]); got != 1 {
		t.Errorf("expected 1 point on 2026-08-27, got %d", got)
	}
}

func TestTimeSeriesProviderErrorSurfaced(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","code":429,"message":"limit reached"}`))
	})

	_, err := c.IntradaySeries("AAPL")
	if err == nil {
		t.Fatal("expected provider error to surface")
	}
}

func TestDailySeriesGroupsByMonth(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "1day" {
			t.Errorf("expected 1day interval, got %s", r.URL.Query().Get("interval"))
		}
		w.Write([]byte(`{"values":[
			{"datetime":"2026-08-28","close":"101.5"},
			{"datetime":"2026-08-27","close":"100.0"},
			{"datetime":"2026-07-31","close":"95.0"}
		],"status":"ok"}`))
	})

	data, err := c.DailySeries("AAPL")
	if err != nil {
		t.Fatalf("DailySeries returned error: %v", err)
	}
	if len(data.ByMonth["2026-08"]) != 2 || len(data.ByMonth["2026-07"]) != 1 {
		t.Errorf("unexpected month grouping: %v", data.ByMonth)
	}
}

func TestSearchSortsPrimaryExchangeFirstStable(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"symbol":"A","instrument_name":"A Corp","exchange":"NYSE","currency":"USD"},
			{"symbol":"B","instrument_name":"B Inc","exchange":"NASDAQ","currency":"USD"},
			{"symbol":"C","instrument_name":"C Ltd","exchange":"LSE","currency":"GBP"},
			{"symbol":"D","instrument_name":"D Co","exchange":"NASDAQ","currency":"USD"}
		],"status":"ok"}`))
	})

	results, err := c.Search("a")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	gotOrder := []string{}
	for _, r := range results {
		gotOrder = append(gotOrder, r.Symbol)
	}
	want := []string{"B", "D", "A", "C"}
	for i := range want {
		if gotOrder[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, gotOrder)
		}
	}
}

func errorsAs(err error, target interface{}) bool {
	return errors.As(err, target)
}
