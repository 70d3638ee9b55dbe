package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()

	m.Interaction("favorite")
	m.Interaction("favorite")
	m.Transition("repost")
	m.PurgeFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Interactions.WithLabelValues("favorite")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("repost")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MediaPurgeErrors))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(body), `ads_interactions_total{kind="favorite"} 2`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Interaction("view")
		m.Transition("expire")
		m.PurgeFailed()
	})
}

func TestNewTwiceDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}
