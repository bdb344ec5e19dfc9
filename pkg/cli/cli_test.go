package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PlanSplits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/splits", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req PlanRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "trips", req.Table)
		assert.Equal(t, "PARTIAL", req.Pushdown)

		_, _ = w.Write([]byte(`{"requestId":"r1","splits":[{"type":"SEGMENT","query":"q","host":"h1","segments":["s1"]}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	resp, err := c.PlanSplits(context.Background(), PlanRequest{Table: "trips", Pushdown: "PARTIAL"})
	require.NoError(t, err)
	assert.Equal(t, "r1", resp.RequestID)
	require.Len(t, resp.Splits, 1)
	assert.Equal(t, "h1", resp.Splits[0].Host)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"message":"table is required"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.PlanSplits(context.Background(), PlanRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	assert.Contains(t, apiErr.Message, "table is required")
}

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "dev",
		Profiles: map[string]Profile{
			"dev":  {Host: "http://localhost:8080"},
			"prod": {Host: "https://bridge.internal", Token: "t"},
		},
	}

	assert.Equal(t, "http://localhost:8080", cfg.ActiveProfile("").Host)
	assert.Equal(t, "https://bridge.internal", cfg.ActiveProfile("prod").Host)
	assert.Empty(t, cfg.ActiveProfile("missing").Host)
}

func TestValidateOutputFormat(t *testing.T) {
	assert.NoError(t, validateOutputFormat(""))
	assert.NoError(t, validateOutputFormat("table"))
	assert.NoError(t, validateOutputFormat("json"))
	assert.Error(t, validateOutputFormat("xml"))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"HOST", "COUNT"}, [][]string{
		{"h1", "3"},
		{"host-long", "1"},
	})

	out := buf.String()
	assert.Contains(t, out, "HOST")
	assert.Contains(t, out, "host-long")
}
