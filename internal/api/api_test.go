package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/biosynth/internal/store"
	"github.com/rcliao/biosynth/internal/synth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, timeout time.Duration, opts ...synth.Option) *gin.Engine {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(synth.New(logger, opts...), s, Options{Timeout: timeout, Logger: logger})
	return srv.Router()
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestServer(t, time.Second)
	w := do(t, r, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestTypes(t *testing.T) {
	r := newTestServer(t, time.Second)

	tests := []struct {
		path             string
		normal, abnormal int
		label, id        string
	}{
		{"/api/eeg/types", 5, 12, "Sleep Stage 2", "sleep_stage2"},
		{"/api/ecg/types", 3, 15, "STEMI", "stemi"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, r, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, w.Code)

			var got map[string]map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Len(t, got["normal"], tt.normal)
			assert.Len(t, got["abnormal"], tt.abnormal)

			merged := map[string]string{}
			for _, g := range got {
				for k, v := range g {
					merged[k] = v
				}
			}
			assert.Equal(t, tt.id, merged[tt.label])
		})
	}
}

func TestGenerateAndDownload_EEG(t *testing.T) {
	r := newTestServer(t, 10*time.Second)

	w := do(t, r, http.MethodPost, "/api/generate/eeg", `{"type":"normal_awake","duration":2,"sampling_rate":128,"seed":7}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotEmpty(t, resp.SessionID)
	assert.Equal(t, uint64(7), resp.Data.Seed)
	assert.Equal(t, 256, resp.Data.SampleCount)
	assert.Len(t, resp.Data.Channels, 16)
	require.NotNil(t, resp.Data.Features.BandPower)
	assert.Contains(t, resp.Data.Files, "features")

	w = do(t, r, http.MethodGet, "/api/download/"+resp.SessionID+"/csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), resp.SessionID+"_data.csv")
	rows, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 257)
	assert.Equal(t, "Fp1", rows[0][0])

	w = do(t, r, http.MethodGet, "/api/download/"+resp.SessionID+"/features", "")
	require.Equal(t, http.StatusOK, w.Code)
	rows, err = csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 17)

	w = do(t, r, http.MethodGet, "/api/session/"+resp.SessionID+"/files", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/features")
}

func TestGenerate_ECGShortHasNoFeatures(t *testing.T) {
	r := newTestServer(t, 10*time.Second)

	w := do(t, r, http.MethodPost, "/api/generate/ecg", `{"type":"normal_sinus","duration":1,"sampling_rate":256}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"ECG"}, resp.Data.Channels)
	assert.True(t, resp.Data.Features.Empty())
	assert.NotContains(t, resp.Data.Files, "features")

	w = do(t, r, http.MethodGet, "/api/download/"+resp.SessionID+"/features", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate_Defaults(t *testing.T) {
	r := newTestServer(t, 30*time.Second)
	w := do(t, r, http.MethodPost, "/api/generate/ecg", `{"type":"sinus_bradycardia"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 30.0, resp.Data.Duration)
	assert.Equal(t, 256, resp.Data.SamplingRate)
	assert.Equal(t, 30*256, resp.Data.SampleCount)
}

func TestGenerate_Errors(t *testing.T) {
	r := newTestServer(t, 10*time.Second)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"missing type", "/api/generate/eeg", `{"duration":1}`, http.StatusBadRequest},
		{"bad json", "/api/generate/eeg", `{`, http.StatusBadRequest},
		{"unknown pattern", "/api/generate/ecg", `{"type":"nope","duration":1}`, http.StatusBadRequest},
		{"negative duration", "/api/generate/ecg", `{"type":"stemi","duration":-1}`, http.StatusBadRequest},
		{"fractional samples", "/api/generate/ecg", `{"type":"stemi","duration":0.001,"sampling_rate":256}`, http.StatusBadRequest},
		{"nyquist", "/api/generate/eeg", `{"type":"normal_awake","duration":1,"sampling_rate":64}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestGenerate_SampleCap(t *testing.T) {
	r := newTestServer(t, 10*time.Second, synth.WithMaxSamples(2048))

	w := do(t, r, http.MethodPost, "/api/generate/eeg", `{"type":"flat_eeg","duration":10000000,"sampling_rate":100000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "limit of 2048 samples")

	w = do(t, r, http.MethodPost, "/api/generate/ecg", `{"type":"stemi","duration":8,"sampling_rate":256}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestGenerate_DeadlineExceeded(t *testing.T) {
	r := newTestServer(t, time.Nanosecond)
	w := do(t, r, http.MethodPost, "/api/generate/eeg", `{"type":"normal_awake","duration":30,"sampling_rate":256}`)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestDownload_Errors(t *testing.T) {
	r := newTestServer(t, time.Second)

	w := do(t, r, http.MethodGet, "/api/download/missing/plot", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/download/missing/csv", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/session/missing/files", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session_id":"missing","files":{}}`, w.Body.String())
}
