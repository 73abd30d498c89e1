package netclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/items/1", r.URL.Path)
		assert.Equal(t, "corr-1", r.Header.Get(common.CorrelationIDHeaderName))
		assert.Equal(t, "offlinesync", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(time.Second)
	ctx := WithCorrelationID(context.Background(), "corr-1")

	got, err := c.Get(ctx, srv.URL+"/items/1")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":1}`), got)
}

func TestHTTPClient_Post(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, common.DefaultContentType, r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(common.CorrelationIDHeaderName))
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(append([]byte("echo:"), body...))
	}))
	defer srv.Close()

	got, err := NewHTTPClient(time.Second).Post(context.Background(), srv.URL, []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, "echo:hello", string(got))
}

func TestHTTPClient_SendKeepsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, []string{"a", "b"}, r.Header.Values("X-Tag"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	req := &models.Request{
		Method: http.MethodPut,
		URL:    srv.URL,
		Header: http.Header{"Content-Type": {"application/json"}, "X-Tag": {"a", "b"}},
		Body:   []byte(`{}`),
	}
	c := NewHTTPClient(time.Second, WithUserAgent("test-agent"), WithHTTPClient(&http.Client{Timeout: time.Second}))
	got, err := c.Send(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestHTTPClient_Non2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(time.Second).Get(context.Background(), srv.URL)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusServiceUnavailable, se.Code)
	require.Equal(t, []byte("down"), se.Body)
	require.Contains(t, se.Error(), "503")
}

func TestHTTPClient_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := NewHTTPClient(time.Second).Get(context.Background(), addr)
	require.ErrorIs(t, err, common.ErrUnavailable)
}

func TestHTTPClient_TimeoutIsUnavailable(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPClient(0).Get(ctx, srv.URL)
	require.ErrorIs(t, err, common.ErrUnavailable)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPClient_BadURL(t *testing.T) {
	_, err := NewHTTPClient(time.Second).Get(context.Background(), "http://[::1")
	require.ErrorIs(t, err, common.ErrInvalidRequest)
}

func TestHTTPClient_MaxBodyBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	c := NewHTTPClient(time.Second, WithMaxBodyBytes(4))
	got, err := c.Get(context.Background(), srv.URL)
	require.ErrorIs(t, err, common.ErrBodyTooLarge)
	require.Nil(t, got)

	c = NewHTTPClient(time.Second, WithMaxBodyBytes(10))
	got, err = c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "0123456789", string(got))
}

func TestHTTPClient_Ping(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusNotFound)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(code.Load()))
	}))
	defer srv.Close()

	c := NewHTTPClient(time.Second)
	require.NoError(t, c.Ping(context.Background(), srv.URL))

	code.Store(http.StatusBadGateway)
	require.ErrorIs(t, c.Ping(context.Background(), srv.URL), common.ErrUnavailable)

	srv.Close()
	require.ErrorIs(t, c.Ping(context.Background(), srv.URL), common.ErrUnavailable)
}

func TestCorrelationID(t *testing.T) {
	require.Equal(t, "abc", CorrelationID(WithCorrelationID(context.Background(), "abc")))

	a := CorrelationID(context.Background())
	b := CorrelationID(context.Background())
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}
