package estimator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksingh-scogo/vramio/pkg/hub"
)

func TestHandleEstimateMissingParam(t *testing.T) {
	handler := NewHTTPHandler(testLogger(), newTestEstimator("http://unused.test"), nil)

	for _, path := range []string{"/", "/model"} {
		t.Run(path, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Contains(t, body["error"], "Usage:")
		})
	}
}

func TestHandleEstimateSuccess(t *testing.T) {
	const modelID = "test-org/test-model"

	upstream := fakeHub(t, modelID, []hub.RepoFile{
		{Type: "file", Path: "model.safetensors"},
	}, map[string][]byte{
		"model.safetensors": weightBlob(t, "F16", []int64{800_000_000}),
	})

	handler := NewHTTPHandler(testLogger(), newTestEstimator(upstream.URL), nil)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/model?hf_id="+modelID, nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))

	var report Report
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &report))
	assert.Equal(t, modelID, report.Model)
	assert.Equal(t, "800.00M", report.TotalParameters)
	assert.Equal(t, "1.49 GB", report.NativeMemory)
}

func TestHandleEstimateError(t *testing.T) {
	handler := NewHTTPHandler(testLogger(), newTestEstimator("http://unused.test"), nil)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/model?hf_id=no-namespace", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "invalid model ID")
}

func TestHandleUnknownPath(t *testing.T) {
	handler := NewHTTPHandler(testLogger(), newTestEstimator("http://unused.test"), nil)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandlePreflight(t *testing.T) {
	handler := NewHTTPHandler(testLogger(), newTestEstimator("http://unused.test"), nil)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodOptions, "/model", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
}
