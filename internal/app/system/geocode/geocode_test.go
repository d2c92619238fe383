package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagauto/tagauto/internal/app/system/geocode"
	"go.uber.org/zap"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "59.91", r.URL.Query().Get("lat"))
		assert.Equal(t, "10.75", r.URL.Query().Get("lon"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Karl Johans gate 1, Oslo, Norway"}`))
	}))
	defer srv.Close()

	c := geocode.New(srv.URL, nil, time.Hour, zap.NewNop())
	addr, err := c.ReverseGeocode(context.Background(), 59.91, 10.75)
	require.NoError(t, err)
	assert.Equal(t, "Karl Johans gate 1, Oslo, Norway", addr)
}

func TestReverseGeocode_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := geocode.New(srv.URL, nil, time.Hour, zap.NewNop())
	_, err := c.ReverseGeocode(context.Background(), 1, 2)
	assert.Error(t, err)
}

func TestReverseGeocode_Unreachable(t *testing.T) {
	c := geocode.New("http://127.0.0.1:1", nil, time.Hour, zap.NewNop())
	_, err := c.ReverseGeocode(context.Background(), 1, 2)
	assert.Error(t, err)
}
