package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/internal/ai"
	"taskboard/internal/config"
	"taskboard/internal/tz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newZone(t *testing.T) *tz.Zone {
	z, err := tz.New("Australia/Sydney", tz.WithClock(func() time.Time {
		return time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return z
}

func chatServer(t *testing.T, reply string, seen *map[string]any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			require.NoError(t, json.Unmarshal(body, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": reply}}},
		})
	}))
}

func TestExtractTasks_FencedReply(t *testing.T) {
	reply := "```json\n[{\"title\":\"Create My Tasks Page\",\"priority\":\"High\",\"subtasks\":[{\"title\":\"Add checkbox\"}]}]\n```"
	var seen map[string]any
	srv := chatServer(t, reply, &seen)
	defer srv.Close()

	c := ai.New(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "m", TimeoutSeconds: 5}, newZone(t))
	drafts, err := c.ExtractTasks(context.Background(), "we need a my tasks page")

	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Create My Tasks Page", drafts[0].Title)
	require.Len(t, drafts[0].Subtasks, 1)

	// текущая дата подставляется в промпт в зоне проекта
	msgs := seen["messages"].([]any)
	assert.Contains(t, msgs[1].(map[string]any)["content"], "2025-06-09")
	assert.Equal(t, "m", seen["model"])
}

func TestExtractTasks_NonListReply(t *testing.T) {
	srv := chatServer(t, `{"title":"not a list"}`, nil)
	defer srv.Close()

	c := ai.New(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key"}, newZone(t))
	drafts, err := c.ExtractTasks(context.Background(), "transcript")

	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestSummarize(t *testing.T) {
	srv := chatServer(t, "  Short summary.  ", nil)
	defer srv.Close()

	c := ai.New(config.AIConfig{BaseURL: srv.URL + "/", APIKey: "test-key"}, newZone(t))
	summary, err := c.Summarize(context.Background(), "transcript")

	require.NoError(t, err)
	assert.Equal(t, "Short summary.", summary)
}

func TestChat_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := ai.New(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key"}, newZone(t))
	_, err := c.Summarize(context.Background(), "transcript")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNotConfigured(t *testing.T) {
	c := ai.New(config.AIConfig{BaseURL: "http://unused"}, newZone(t))
	_, err := c.ExtractTasks(context.Background(), "transcript")
	assert.ErrorIs(t, err, ai.ErrNotConfigured)
}

func TestParseDrafts(t *testing.T) {
	assert.Len(t, ai.ParseDrafts(`[{"title":"a"}, "junk", 3, {"title":"b"}]`), 2)
	assert.Empty(t, ai.ParseDrafts("Sorry, I cannot help."))
	assert.Empty(t, ai.ParseDrafts("```\n[not json\n```"))
	assert.Equal(t, `[1]`, ai.StripFence("```\n[1]\n```"))
	assert.Equal(t, `[1]`, ai.StripFence("  [1] "))
}
