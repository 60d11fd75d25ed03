package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"serpavi_estimator/config"
	"serpavi_estimator/models"
)

type stubEstimator struct {
	result    *models.EstimateResult
	lastReq   *models.EstimateRequest
	estimates int
}

func (s *stubEstimator) Estimate(ctx context.Context, req *models.EstimateRequest) *models.EstimateResult {
	s.estimates++
	s.lastReq = req
	return s.result
}

func (s *stubEstimator) History(limit int) ([]models.EstimateRun, error) {
	return nil, nil
}

func newTestServer(stub *stubEstimator) *Server {
	return New(stub, nil, &config.SiteConfig{AppURL: "https://serpavi.mivau.gob.es/"})
}

func postEstimate(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestEstimate_MalformedJSON(t *testing.T) {
	stub := &stubEstimator{}
	rec := postEstimate(t, newTestServer(stub), "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if stub.estimates != 0 {
		t.Fatalf("service must not be called, got %d calls", stub.estimates)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestEstimate_InvalidRef(t *testing.T) {
	stub := &stubEstimator{}
	rec := postEstimate(t, newTestServer(stub), `{"referenciaCatastral":"too-short"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var res models.EstimateResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if res.Status != models.StatusFailed || res.ErrorKind != models.ErrKindInvalidRequest {
		t.Fatalf("unexpected payload: status=%q kind=%q", res.Status, res.ErrorKind)
	}
	if stub.estimates != 0 {
		t.Fatal("service must not be called for invalid identifiers")
	}
}

func TestEstimate_MissingAttributes(t *testing.T) {
	stub := &stubEstimator{}
	rec := postEstimate(t, newTestServer(stub),
		`{"referenciaCatastral":"9872023VH5797S0001WX","etiquetaEnergetica":"E"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res models.EstimateResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if res.Status != models.StatusNeedsAttributes {
		t.Fatalf("expected status %q, got %q", models.StatusNeedsAttributes, res.Status)
	}
	want := []string{"estadoConservacion", "planta"}
	if len(res.Missing) != len(want) || res.Missing[0] != want[0] || res.Missing[1] != want[1] {
		t.Fatalf("expected missing %v, got %v", want, res.Missing)
	}
	if stub.estimates != 0 {
		t.Fatal("service must not be called while mandatory attributes are missing")
	}
}

func TestEstimate_Success(t *testing.T) {
	min, max, total := 890.0, 1210.0, 1050.0
	stub := &stubEstimator{result: &models.EstimateResult{
		OK:           true,
		Status:       models.StatusOK,
		CadastralRef: "9872023VH5797S0001WX",
		MinPrice:     &min,
		MaxPrice:     &max,
		TotalPrice:   &total,
		Method:       "reference_price",
	}}
	rec := postEstimate(t, newTestServer(stub),
		`{"referenciaCatastral":"9872023vh5797s0001wx","etiquetaEnergetica":"E","estadoConservacion":"bueno","planta":"3"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res models.EstimateResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !res.OK || res.Status != models.StatusOK {
		t.Fatalf("unexpected payload: ok=%v status=%q", res.OK, res.Status)
	}
	if res.TotalPrice == nil || *res.TotalPrice != 1050 {
		t.Fatalf("unexpected total price %v", res.TotalPrice)
	}
	if stub.lastReq == nil || stub.lastReq.CadastralRef != "9872023VH5797S0001WX" {
		t.Fatalf("service saw unnormalized request: %+v", stub.lastReq)
	}
}

func TestEstimate_SoftFailureIsHTTP200(t *testing.T) {
	stub := &stubEstimator{result: models.FailedResult(
		"9872023VH5797S0001WX", models.ErrKindUnreachable, "target not reachable", nil)}
	rec := postEstimate(t, newTestServer(stub),
		`{"referenciaCatastral":"9872023VH5797S0001WX","etiquetaEnergetica":"E","estadoConservacion":"bueno","planta":"3"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("soft failures use a normal transport status, got %d", rec.Code)
	}
	var res models.EstimateResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if res.Status != models.StatusFailed || res.ErrorKind != models.ErrKindUnreachable {
		t.Fatalf("unexpected payload: status=%q kind=%q", res.Status, res.ErrorKind)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubEstimator{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "ok" || body["time"] == "" {
		t.Fatalf("unexpected health payload: %v", body)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}
