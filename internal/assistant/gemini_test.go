package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modelResponse(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", "test-model", srv.URL, 2*time.Second)
}

func TestExtractListing(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(modelResponse(`{"name":"Dog Leash","description":"A strong leash."}`)))
	})

	listing, err := client.ExtractListing(context.Background(), "aW1n", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Dog Leash", listing.Name)
	assert.Equal(t, "A strong leash.", listing.Description)
	assert.Equal(t, "/models/test-model:generateContent", gotPath)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 2)
	assert.NotEmpty(t, gotBody.Contents[0].Parts[0].Text)
	require.NotNil(t, gotBody.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/png", gotBody.Contents[0].Parts[1].InlineData.MimeType)
	assert.Equal(t, "aW1n", gotBody.Contents[0].Parts[1].InlineData.Data)
}

func TestExtractListingStripsCodeFences(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelResponse("```json\n{\"name\":\"Cat Tree\",\"description\":\"Tall.\"}\n```")))
	})

	listing, err := client.ExtractListing(context.Background(), "aW1n", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "Cat Tree", listing.Name)
}

func TestExtractListingMalformedText(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelResponse("I cannot identify this product.")))
	})

	_, err := client.ExtractListing(context.Background(), "aW1n", "image/png")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestExtractListingMissingName(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelResponse(`{"description":"no name"}`)))
	})

	_, err := client.ExtractListing(context.Background(), "aW1n", "image/png")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestExtractListingNoCandidates(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.ExtractListing(context.Background(), "aW1n", "image/png")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestExtractListingUpstreamError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := client.ExtractListing(context.Background(), "aW1n", "image/png")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestExtractListingTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client := NewClient("test-key", "test-model", srv.URL, 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ExtractListing(ctx, "aW1n", "image/png")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
