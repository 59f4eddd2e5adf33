// comply/cmd/complyd/server_test.go

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgehrsitz/comply/pkg/report"
	"rgehrsitz/comply/pkg/rules"
	"rgehrsitz/comply/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	ruleset := &rules.Ruleset{Rules: []rules.Rule{
		{
			ID:          "pw-length",
			Framework:   "CIS",
			Description: "Minimum password length",
			Field:       "password_policy.min_length",
			Op:          rules.OpGTE,
			Value:       float64(12),
			Weight:      5,
			Remediation: "Raise the minimum password length to 12.",
		},
		{
			ID:          "fw-enabled",
			Framework:   "CIS",
			Description: "Firewall enabled",
			Field:       "network.firewall_enabled",
			Op:          rules.OpEqual,
			Value:       true,
			Weight:      5,
		},
	}}

	exprRules := &rules.ExprRuleset{Rules: []rules.ExprRule{
		{ID: "mfa_enabled", Rule: "mfa_enabled == true", ControlID: "AC-2"},
		{ID: "session_timeout", Rule: "session_timeout <= 30", ControlID: "AC-12"},
	}}
	require.NoError(t, rules.Validate(ruleset))

	deps := &Dependencies{
		Rules:     ruleset,
		ExprRules: exprRules,
		Publisher: store.NopPublisher{},
	}
	return NewServer(deps, t.TempDir(), NewHub(time.Second))
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server is running", rec.Body.String())
}

func TestHandleEvaluate(t *testing.T) {
	server := newTestServer(t)
	body := `{
		"asset_id": "company_A",
		"config": {
			"password_policy": {"min_length": 14},
			"network": {"firewall_enabled": false}
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(body))
	rec := httptest.NewRecorder()

	server.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "company_A", got.Asset)
	assert.NotEmpty(t, got.ReportID)
	require.Contains(t, got.Frameworks, "CIS")
	assert.Equal(t, 50.0, got.Frameworks["CIS"].CompliancePct)
	assert.Equal(t, 50.0, got.OverallPct)
}

func TestHandleEvaluateBadConfig(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "Malformed JSON", body: `{"asset_id": "a", "config":`},
		{name: "Config is an array", body: `{"asset_id": "a", "config": [1, 2]}`},
		{name: "Config is a scalar", body: `{"asset_id": "a", "config": 42}`},
		{name: "Config is null", body: `{"asset_id": "a", "config": null}`},
		{name: "Config missing", body: `{"asset_id": "a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			server.Routes().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleEvaluateMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/evaluate", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func multipartBody(t *testing.T, contents string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "checklist.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestHandleUploadFile(t *testing.T) {
	server := newTestServer(t)
	checklist := `{
		"asset_id": "company_B",
		"checks": [
			{"id": "mfa_enabled", "value": true},
			{"id": "session_timeout", "value": 45}
		]
	}`
	body, contentType := multipartBody(t, checklist)
	req := httptest.NewRequest(http.MethodPost, "/upload-file", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	server.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got report.ChecklistReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "company_B", got.Asset)
	assert.Equal(t, 50, got.Score)
	assert.Len(t, got.Details, 2)
}

func TestHandleUploadFileInvalidJSON(t *testing.T) {
	server := newTestServer(t)
	body, contentType := multipartBody(t, `{not json`)
	req := httptest.NewRequest(http.MethodPost, "/upload-file", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	server.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid JSON")
}

func TestHandleUploadFileNullPayload(t *testing.T) {
	// A JSON null is malformed input, not an empty checklist to score.
	server := newTestServer(t)
	body, contentType := multipartBody(t, `null`)
	req := httptest.NewRequest(http.MethodPost, "/upload-file", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	server.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid JSON")
}

func TestHandleUploadFileMissingField(t *testing.T) {
	server := newTestServer(t)
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("other", "x"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	server.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUploadFileNoExprRules(t *testing.T) {
	server := newTestServer(t)
	server.deps.ExprRules = nil

	body, contentType := multipartBody(t, `{"asset_id": "a", "checks": []}`)
	req := httptest.NewRequest(http.MethodPost, "/upload-file", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	server.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func newRedisPublisher(t *testing.T) *store.RedisPublisher {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	pub, err := store.NewRedisPublisher(context.Background(), s.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { pub.Close() })
	return pub
}

func TestHandleScore(t *testing.T) {
	server := newTestServer(t)
	pub := newRedisPublisher(t)
	server.deps.Publisher = pub

	require.NoError(t, pub.PublishReport(context.Background(), &report.Report{
		ReportID:   "r-1",
		Asset:      "company_A",
		OverallPct: 82.35,
		Timestamp:  "2024-01-01T00:00:00Z",
	}))

	req := httptest.NewRequest(http.MethodGet, "/score?asset=company_A", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got scoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "company_A", got.Asset)
	assert.Equal(t, 82.35, got.OverallPct)
}

func TestHandleScoreNotFound(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/score?asset=unknown", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/score", nil)
	rec = httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTailReportEvents(t *testing.T) {
	pub := newRedisPublisher(t)
	hub := NewHub(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tailReportEvents(ctx, pub, hub)

	// Republish until the tail has caught the event; the first publish can
	// land before the subscription is established.
	assert.Eventually(t, func() bool {
		if err := pub.PublishReport(ctx, &report.Report{
			ReportID:   "r-2",
			Asset:      "company_B",
			OverallPct: 41.5,
			Timestamp:  "2024-01-02T00:00:00Z",
		}); err != nil {
			return false
		}
		summary, ok := hub.Snapshot()["company_B"]
		return ok && summary.OverallPct == 41.5
	}, 2*time.Second, 20*time.Millisecond)
}

func TestHubUpdateAndSnapshot(t *testing.T) {
	hub := NewHub(time.Second)
	hub.Update(store.Summary{ReportID: "r1", Asset: "company_A", OverallPct: 75})
	hub.Update(store.Summary{ReportID: "r2", Asset: "company_A", OverallPct: 80})
	hub.Update(store.Summary{ReportID: "r3", Asset: "company_B", OverallPct: 40})

	snapshot := hub.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "r2", snapshot["company_A"].ReportID)
	assert.Equal(t, 40.0, snapshot["company_B"].OverallPct)
}
