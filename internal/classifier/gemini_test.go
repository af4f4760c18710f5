package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiTestServer(t *testing.T, status int, answer string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": answer}}}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newTestGemini(t *testing.T, baseURL string) *GeminiClient {
	t.Helper()
	client, err := NewGeminiClient(GeminiConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	client.retryOpts.initialDelay = 0
	client.retryOpts.maxDelay = 0
	return client
}

func TestGeminiClassify(t *testing.T) {
	server, _ := geminiTestServer(t, http.StatusOK, "食費")
	client := newTestGemini(t, server.URL)

	got, err := client.Classify(context.Background(), "スーパーマーケット", []string{"食費", "交通費"})
	require.NoError(t, err)
	assert.Equal(t, "食費", got)
}

func TestGeminiClassifyContainsMatch(t *testing.T) {
	server, _ := geminiTestServer(t, http.StatusOK, "カテゴリは「食費」です")
	client := newTestGemini(t, server.URL)

	got, err := client.Classify(context.Background(), "スーパーマーケット", []string{"食費"})
	require.NoError(t, err)
	assert.Equal(t, "食費", got)
}

func TestGeminiClassifyUnknownAnswer(t *testing.T) {
	server, _ := geminiTestServer(t, http.StatusOK, "贅沢品")
	client := newTestGemini(t, server.URL)

	got, err := client.Classify(context.Background(), "スーパーマーケット", []string{"食費"})
	require.NoError(t, err)
	assert.Equal(t, "", got, "answers outside the known set are discarded")
}

func TestGeminiClassifyNoCategories(t *testing.T) {
	server, calls := geminiTestServer(t, http.StatusOK, "食費")
	client := newTestGemini(t, server.URL)

	got, err := client.Classify(context.Background(), "スーパーマーケット", nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Zero(t, calls.Load(), "no request without candidate categories")
}

func TestGeminiClassifyClientErrorNotRetried(t *testing.T) {
	server, calls := geminiTestServer(t, http.StatusBadRequest, "")
	client := newTestGemini(t, server.URL)

	_, err := client.Classify(context.Background(), "スーパーマーケット", []string{"食費"})
	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load(), "4xx responses are not retried")
}

func TestGeminiClassifyServerErrorRetried(t *testing.T) {
	server, calls := geminiTestServer(t, http.StatusInternalServerError, "")
	client := newTestGemini(t, server.URL)

	_, err := client.Classify(context.Background(), "スーパーマーケット", []string{"食費"})
	require.Error(t, err)
	assert.Equal(t, int64(3), calls.Load(), "5xx responses use all attempts")
}

func TestMatchCategory(t *testing.T) {
	categories := []string{"食費", "交通費", "Dining"}

	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{name: "exact", answer: "食費", want: "食費"},
		{name: "case insensitive exact", answer: "dining", want: "Dining"},
		{name: "answer contains category", answer: "おそらく食費でしょう", want: "食費"},
		{name: "category contains answer", answer: "交通", want: "交通費"},
		{name: "no match", answer: "贅沢品", want: ""},
		{name: "empty", answer: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchCategory(tt.answer, categories))
		})
	}
}
