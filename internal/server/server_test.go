package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/scrolly/pkg/article"
	"github.com/matzehuels/scrolly/pkg/cache"
	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/chart/housing"
	"github.com/matzehuels/scrolly/pkg/chart/lifeexp"
	"github.com/matzehuels/scrolly/pkg/dataset"
	"github.com/matzehuels/scrolly/pkg/pipeline"
)

func testData() *article.Datasets {
	countries := []dataset.Country{
		{Country: "Chad", Continent: "Africa", LifeExpectancy: 51, GDPPerCapita: 1000},
		{Country: "Japan", Continent: "Asia", LifeExpectancy: 83.9, GDPPerCapita: 38400},
	}
	var prices []dataset.HousingPrice
	for i := 0; i < 12; i++ {
		d := time.Date(2016, time.July, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		for _, region := range []string{"U.S.", "Pacific"} {
			prices = append(prices, dataset.HousingPrice{Region: region, Month: d.Format(dataset.MonthLayout), Date: d, Price: 250000 + float64(i*1000)})
		}
	}
	return article.StaticDatasets(countries, prices)
}

func newTestServer(t *testing.T, data *article.Datasets) (*Server, *httptest.Server) {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{
		SessionTTL: time.Hour,
		Viewport:   chart.Size{Width: 800, Height: 500},
	}, data, pipeline.NewRunner(fc, nil, nil), nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = s.Sessions().Close()
	})
	return s, ts
}

func do(t *testing.T, method, url string, body io.Reader) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, body := do(t, http.MethodPost, ts.URL+"/api/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: %d %s", resp.StatusCode, body)
	}
	var out struct{ ID string }
	if err := json.Unmarshal([]byte(body), &out); err != nil || out.ID == "" {
		t.Fatalf("create session body %q: %v", body, err)
	}
	return out.ID
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, testData())
	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestPageCreatesSession(t *testing.T) {
	s, ts := newTestServer(t, testData())
	resp, body := do(t, http.MethodGet, ts.URL+"/", nil)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("page = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	m := regexp.MustCompile(`data-session="([0-9a-f-]+)"`).FindStringSubmatch(body)
	if m == nil {
		t.Fatal("page has no session id")
	}
	if s.Sessions().Len() != 1 {
		t.Errorf("sessions = %d, want 1", s.Sessions().Len())
	}
	if !strings.Contains(body, `class="price-line us"`) || !strings.Contains(body, `data-step="asia"`) {
		t.Error("page is missing chart or narrative content")
	}
}

func TestSteps(t *testing.T) {
	_, ts := newTestServer(t, testData())
	resp, body := do(t, http.MethodGet, ts.URL+"/api/steps", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out []outlineChart
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Name != lifeexp.Name || len(out[0].Steps) != len(lifeexp.Steps()) {
		t.Fatalf("outline = %+v", out)
	}
	if out[1].Steps[0].ID != housing.StepReady || out[1].Steps[0].Text == "" {
		t.Errorf("housing first step = %+v", out[1].Steps[0])
	}
}

func TestSessionLifecycle(t *testing.T) {
	s, ts := newTestServer(t, testData())
	id := createSession(t, ts)
	base := ts.URL + "/api/sessions/" + id

	resp, _ := do(t, http.MethodPost, base+"/steps/"+lifeexp.StepAfrica, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("step status = %d", resp.StatusCode)
	}

	resp, svg := do(t, http.MethodGet, base+"/charts/lifeexp.svg", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("chart = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(svg, `fill="`+lifeexp.Highlight+`"`) {
		t.Error("step not reflected in the session chart")
	}

	resp, _ = do(t, http.MethodPost, base+"/viewport", strings.NewReader(`{"width":1000,"height":700}`))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("viewport status = %d", resp.StatusCode)
	}
	sess, err := s.Sessions().Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	sess.Page.FlushResize()
	_, svg = do(t, http.MethodGet, base+"/charts/housing.svg", nil)
	if !strings.Contains(svg, `width="1000" height="700"`) {
		t.Error("viewport change not applied")
	}

	resp, _ = do(t, http.MethodDelete, base, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodPost, base+"/steps/asia", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("step after delete = %d, want 404", resp.StatusCode)
	}
}

func TestSessionErrors(t *testing.T) {
	_, ts := newTestServer(t, testData())
	id := createSession(t, ts)
	base := ts.URL + "/api/sessions/" + id

	tests := []struct {
		name   string
		method string
		url    string
		body   string
		want   int
	}{
		{"unknown step", http.MethodPost, base + "/steps/europe", "", http.StatusNotFound},
		{"unknown session", http.MethodPost, ts.URL + "/api/sessions/00000000-0000-0000-0000-000000000000/steps/asia", "", http.StatusNotFound},
		{"malformed session id", http.MethodPost, ts.URL + "/api/sessions/nope/steps/asia", "", http.StatusNotFound},
		{"unknown chart", http.MethodGet, base + "/charts/pie.svg", "", http.StatusNotFound},
		{"bad viewport", http.MethodPost, base + "/viewport", "{", http.StatusBadRequest},
		{"negative viewport", http.MethodPost, base + "/viewport", `{"width":-1}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			resp, out := do(t, tt.method, tt.url, body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.want, out)
			}
			if !strings.Contains(out, `"error"`) {
				t.Errorf("error body = %q", out)
			}
		})
	}
}

func TestFailedChartIsUnavailable(t *testing.T) {
	data := article.LoadDatasets(context.Background(), nil, nil, dataset.Options{})
	_, ts := newTestServer(t, data)
	id := createSession(t, ts)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/sessions/"+id+"/charts/lifeexp.svg", nil)
	if resp.StatusCode != http.StatusServiceUnavailable || !strings.Contains(body, "LOAD_FAILED") {
		t.Errorf("status = %d body = %s", resp.StatusCode, body)
	}

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/steps/asia", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("step on failed chart = %d, want 204", resp.StatusCode)
	}
}

func TestSnapshot(t *testing.T) {
	_, ts := newTestServer(t, testData())
	url := ts.URL + "/charts/housing.svg?step=highlight-bar&width=770&height=550"

	resp, svg := do(t, http.MethodGet, url, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("X-Cache") != "MISS" {
		t.Fatalf("status = %d cache = %s", resp.StatusCode, resp.Header.Get("X-Cache"))
	}
	if !strings.Contains(svg, `fill="`+housing.WinterBar+`"`) {
		t.Error("snapshot missing the highlight bar")
	}

	resp, again := do(t, http.MethodGet, url, nil)
	if resp.Header.Get("X-Cache") != "HIT" || again != svg {
		t.Errorf("second request cache = %s, same = %v", resp.Header.Get("X-Cache"), again == svg)
	}

	for _, bad := range []struct {
		url  string
		want int
	}{
		{"/charts/housing.svg?step=asia", http.StatusNotFound},
		{"/charts/pie.svg", http.StatusNotFound},
		{"/charts/housing.svg?width=wide", http.StatusBadRequest},
	} {
		if resp, _ := do(t, http.MethodGet, ts.URL+bad.url, nil); resp.StatusCode != bad.want {
			t.Errorf("%s = %d, want %d", bad.url, resp.StatusCode, bad.want)
		}
	}
}

func TestServeShutsDown(t *testing.T) {
	s := New(Config{SessionTTL: time.Hour, ReapInterval: time.Second}, testData(), nil, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/api/sessions", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	if s.Sessions().Len() != 0 {
		t.Error("sessions not closed on shutdown")
	}
}
