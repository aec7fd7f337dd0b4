package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
)

const testKeyEnv = "RAGCHAT_TEST_API_KEY"

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv(testKeyEnv, "test-key")
	c, err := NewClient(Config{
		BaseURL:     baseURL,
		APIKeyEnv:   testKeyEnv,
		Model:       "test-model",
		MaxTokens:   128,
		Temperature: 0.5,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func completionJSON(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` + jsonString(content) + `}}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestCompleteSendsExpectedRequest(t *testing.T) {
	var got struct {
		Model       string           `json:"model"`
		Messages    []domain.Message `json:"messages"`
		MaxTokens   int              `json:"max_tokens"`
		Temperature float64          `json:"temperature"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON("hello back")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	reply, err := c.Complete(context.Background(), []domain.Message{
		{Role: domain.RoleSystem, Content: "be nice"},
		{Role: domain.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 128, got.MaxTokens)
	assert.InDelta(t, 0.5, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, domain.RoleUser, got.Messages[1].Role)
}

func TestCompleteRetriesOnServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(completionJSON("recovered")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	reply, err := c.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, 2, attempts)
}

func TestCompleteNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	assert.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	_, err := NewClient(Config{APIKeyEnv: testKeyEnv, Model: "m"})
	assert.Error(t, err)
}
