package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyClientGetSendsHeaders(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><title>x</title></html>"))
	}))
	defer ts.Close()

	c := NewRestyClient(5 * time.Second)
	resp, err := c.Get(context.Background(), ts.URL, BrowserHeaders(""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "<title>x</title>")
	assert.Equal(t, BrowserUserAgent, gotUA)
}

func TestRestyClientDoPostsBody(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = r.Method + " " + string(b)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	c := NewRestyClient(5 * time.Second)
	resp, err := c.Do(context.Background(), http.MethodPost, ts.URL, map[string]string{"Content-Type": "application/json"}, []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode())
	assert.Equal(t, `POST {"a":1}`, got)
}

func TestGetWithTimeoutExpires(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c := NewRestyClient(10 * time.Second)
	_, err := GetWithTimeout(context.Background(), c, ts.URL, nil, 50*time.Millisecond)
	require.Error(t, err)
}
