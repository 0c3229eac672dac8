package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesCollectors(t *testing.T) {
	RecordSimulation(25*time.Millisecond, 5000)
	RecordRender(40 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint returned %d", rec.Code)
	}

	body := rec.Body.String()
	for _, name := range []string{
		"plumesim_simulations_total",
		"plumesim_simulation_duration_seconds",
		"plumesim_particles_generated_total",
		"plumesim_renders_total",
		"plumesim_render_duration_seconds",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
