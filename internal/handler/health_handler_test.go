package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"symptom-checker-go/pkg/llm"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthResponse struct {
	Status HealthStatus  `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

func getHealth(t *testing.T, client llm.Client) healthResponse {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler(client).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth_Unavailable(t *testing.T) {
	resp := getHealth(t, llm.Unavailable("gemini", errors.New("no key")))
	assert.Equal(t, HealthError, resp.Status)
	require.Len(t, resp.Checks, 1)
	assert.Equal(t, "llm", resp.Checks[0].Name)
	assert.Equal(t, HealthError, resp.Checks[0].Status)
}

type namedClient struct{ llm.Client }

func (namedClient) Name() string { return "gemini:gemini-2.5-flash" }

func TestHealth_OK(t *testing.T) {
	resp := getHealth(t, namedClient{})
	assert.Equal(t, HealthOK, resp.Status)
	assert.Equal(t, "gemini:gemini-2.5-flash", resp.Checks[0].Details)
}
