package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bellapacxx/academy-backend/config"
	"github.com/bellapacxx/academy-backend/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnnouncerWithoutPage(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	announcer := newAnnouncer(&config.Config{FacebookAPIURL: srv.URL})
	require.NotNil(t, announcer)

	skipped := metrics.PagePosts.WithLabelValues("skipped")
	before := testutil.ToFloat64(skipped)
	require.NoError(t, announcer.Announce(context.Background(), "hi", "https://academy.beer"))
	assert.False(t, called)
	assert.Equal(t, before+1, testutil.ToFloat64(skipped))
}
