package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/v1/items/{id}", "418"))
	req := httptest.NewRequest(http.MethodGet, "/v1/items/42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	after := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/v1/items/{id}", "418"))

	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, grew by %v", after-before)
	}
}

func TestFlows(t *testing.T) {
	f := Flows{}
	before := testutil.ToFloat64(flowsTotal.WithLabelValues("sign_in", "success"))
	f.FlowCompleted("sign_in", "success")
	if got := testutil.ToFloat64(flowsTotal.WithLabelValues("sign_in", "success")); got != before+1 {
		t.Errorf("flows = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(bookkeepingFailuresTotal.WithLabelValues("activity"))
	f.BookkeepingFailed("activity")
	if got := testutil.ToFloat64(bookkeepingFailuresTotal.WithLabelValues("activity")); got != before+1 {
		t.Errorf("bookkeeping = %v, want %v", got, before+1)
	}
}

func TestHandler(t *testing.T) {
	RecordContactSubmission(true)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "portfolio_gate_contact_submissions_total") {
		t.Error("contact counter not exported")
	}
}
