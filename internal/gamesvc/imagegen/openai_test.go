package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReturnsFirstImageURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Prompt string `json:"prompt"`
			N      int    `json:"n"`
			Size   string `json:"size"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a red balloon", req.Prompt)
		assert.Equal(t, 1, req.N)
		assert.Equal(t, "512x512", req.Size)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"url": "https://img.test/generated.png"}},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key", srv.URL)
	url, err := c.Generate(context.Background(), "a red balloon")
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/generated.png", url)
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "content policy violation"},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key", srv.URL)
	_, err := c.Generate(context.Background(), "something disallowed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content policy violation")
}

func TestGenerateRequiresKeyAndPrompt(t *testing.T) {
	c := NewOpenAIClient("", "")
	_, err := c.Generate(context.Background(), "prompt")
	assert.Error(t, err)

	c = NewOpenAIClient("key", "")
	_, err = c.Generate(context.Background(), "")
	assert.Error(t, err)
}

func TestGenerateEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key", srv.URL)
	_, err := c.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}
