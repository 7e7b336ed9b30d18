package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"symptom-checker-go/internal/middleware"
	"symptom-checker-go/internal/model"
	"symptom-checker-go/internal/service"
	"symptom-checker-go/internal/symptom"
	"symptom-checker-go/pkg/llm"
	"symptom-checker-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	generate func(ctx context.Context, prompt string, schema llm.Schema) (json.RawMessage, error)
	calls    int32
}

func (s *stubClient) Name() string { return "stub:model" }

func (s *stubClient) GenerateJSON(ctx context.Context, prompt string, schema llm.Schema) (json.RawMessage, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.generate(ctx, prompt, schema)
}

type countingCounter struct{ n int64 }

func (c *countingCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return atomic.AddInt64(&c.n, 1), nil
}

func newTestRouter(client llm.Client, limiter *middleware.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewSymptomService(symptom.NewChecker(client))
	return NewRouter(Deps{
		LLMClient:      client,
		SymptomService: svc,
		AuditService:   service.NewAuditService(nil, svc.Model()),
		JWTManager:     token.NewJWTManager("test-secret", 5),
		Limiter:        limiter,
	})
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    model.FormState `json:"data"`
}

func check(t *testing.T, r http.Handler, symptoms string) (int, envelope) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"symptoms": symptoms})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/symptom-check", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var env envelope
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func TestRouter_ShortInputNeverReachesProvider(t *testing.T) {
	client := &stubClient{generate: func(context.Context, string, llm.Schema) (json.RawMessage, error) {
		t.Fatal("provider must not be called")
		return nil, nil
	}}
	code, env := check(t, newTestRouter(client, nil), "headache")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, symptom.ValidationMessage, env.Data.Error)
	assert.Equal(t, "headache", env.Data.Form.Symptoms)
	assert.Equal(t, int32(0), atomic.LoadInt32(&client.calls))
}

func TestRouter_Success(t *testing.T) {
	client := &stubClient{generate: func(_ context.Context, prompt string, _ llm.Schema) (json.RawMessage, error) {
		assert.Contains(t, prompt, "I have a headache and fever")
		return json.RawMessage(`{"possibleDiagnoses":"1. Viral infection","disclaimer":"Not a substitute for professional advice."}`), nil
	}}
	code, env := check(t, newTestRouter(client, nil), "I have a headache and fever")

	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Data.Result)
	assert.Equal(t, "1. Viral infection", env.Data.Result.PossibleDiagnoses)
	assert.Equal(t, "", env.Data.Form.Symptoms)
	assert.Empty(t, env.Data.Error)
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.calls))
}

func TestRouter_ProviderDown(t *testing.T) {
	client := &stubClient{generate: func(context.Context, string, llm.Schema) (json.RawMessage, error) {
		return nil, &llm.ProviderError{Provider: "stub", Op: "generate", Err: errors.New("API error 503")}
	}}
	code, env := check(t, newTestRouter(client, nil), "chest pain and dizziness")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, service.MsgServiceUnavailable, env.Data.Error)
	assert.Equal(t, "chest pain and dizziness", env.Data.Form.Symptoms)
	assert.Nil(t, env.Data.Result)
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.calls))
}

func TestRouter_UnexpectedFailure(t *testing.T) {
	client := &stubClient{generate: func(context.Context, string, llm.Schema) (json.RawMessage, error) {
		return nil, errors.New("something broke locally")
	}}
	_, env := check(t, newTestRouter(client, nil), "persistent cough for a week")
	assert.Equal(t, service.MsgUnexpectedError, env.Data.Error)
	assert.Equal(t, "persistent cough for a week", env.Data.Form.Symptoms)
}

func TestRouter_UninitializedClient(t *testing.T) {
	r := newTestRouter(llm.Unavailable("gemini", errors.New("no key")), nil)
	_, env := check(t, r, "persistent cough for a week")
	assert.Equal(t, service.MsgServiceUnavailable, env.Data.Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
}

func TestRouter_RateLimitedSubmissions(t *testing.T) {
	client := &stubClient{generate: func(context.Context, string, llm.Schema) (json.RawMessage, error) {
		return json.RawMessage(`{"possibleDiagnoses":"a","disclaimer":"b"}`), nil
	}}
	r := newTestRouter(client, middleware.NewLimiter(&countingCounter{}, 1, time.Minute))

	code, _ := check(t, r, "I have a headache and fever")
	assert.Equal(t, http.StatusOK, code)
	code, _ = check(t, r, "I have a headache and fever")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.calls))

	// 页面浏览不受限流影响
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/symptom-checker", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_WebsocketSubmissionsShareRateLimit(t *testing.T) {
	client := &stubClient{generate: func(context.Context, string, llm.Schema) (json.RawMessage, error) {
		return json.RawMessage(`{"possibleDiagnoses":"a","disclaimer":"b"}`), nil
	}}
	srv := httptest.NewServer(newTestRouter(client, middleware.NewLimiter(&countingCounter{}, 1, time.Minute)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/symptom-checker/session-token")
	require.NoError(t, err)
	var tr struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tr))
	resp.Body.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/symptom-checker/ws/"+tr.Data.Token, nil)
	require.NoError(t, err)
	defer conn.Close()

	type frame struct {
		Status string           `json:"status"`
		State  *model.FormState `json:"state"`
		Error  string           `json:"error"`
	}
	read := func() frame {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		return f
	}
	read() // 初始状态

	require.NoError(t, conn.WriteJSON(map[string]string{"symptoms": "I have a headache and fever"}))
	assert.Equal(t, "pending", read().Status)
	done := read()
	assert.Equal(t, "idle", done.Status)
	require.NotNil(t, done.State)
	assert.True(t, done.State.Succeeded())

	for i := 0; i < 4; i++ {
		require.NoError(t, conn.WriteJSON(map[string]string{"symptoms": "I have a headache and fever"}))
		f := read()
		assert.Equal(t, "idle", f.Status)
		assert.Equal(t, middleware.RateLimitMessage, f.Error)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.calls))
}
