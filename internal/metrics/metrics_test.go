package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveLLMCall(t *testing.T) {
	before := testutil.ToFloat64(llmCalls.WithLabelValues("gemini", "error"))
	ObserveLLMCall("gemini", "error", 0.5)
	assert.Equal(t, before+1, testutil.ToFloat64(llmCalls.WithLabelValues("gemini", "error")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveHTTPRequest(http.MethodGet, "/api/v1/recipes", "200", 0.01)
	RecipeValidationFailed("deepseek")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "alchemorsel_http_requests_total")
	assert.Contains(t, body, "alchemorsel_recipes_validation_failures_total")
}
