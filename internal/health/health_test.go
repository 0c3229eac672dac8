package health

import (
	"net/http/httptest"
	"testing"
)

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != 200 {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}

func TestReadyzGate(t *testing.T) {
	rec := httptest.NewRecorder()
	Readyz(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != 503 {
		t.Errorf("readyz before startup = %d, want 503", rec.Code)
	}

	SetReady()
	rec = httptest.NewRecorder()
	Readyz(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != 200 {
		t.Errorf("readyz after startup = %d, want 200", rec.Code)
	}
}
