package observability_test

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/flowgraph"
	"github.com/painelbot/atendente/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveBuild(t *testing.T) {
	m := observability.New()
	g := &flowgraph.Graph{
		ExpandAll: true,
		Nodes:     make([]flowgraph.Node, 3),
		Edges:     make([]flowgraph.Edge, 2),
		Dangling:  []domain.DanglingRef{{Step: "a", Option: "9", Target: "ghost"}},
	}
	m.ObserveBuild(g)
	m.ObserveBuild(&flowgraph.Graph{})

	expected := `
# HELP atendente_graph_builds_total Flow graph builds by mode
# TYPE atendente_graph_builds_total counter
atendente_graph_builds_total{mode="collapsed"} 1
atendente_graph_builds_total{mode="expand_all"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "atendente_graph_builds_total"))

	// Gauges reflect the last build only.
	count, err := testutil.GatherAndCount(m.Registry(), "atendente_graph_nodes")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_ObserveRequestAndSave(t *testing.T) {
	m := observability.New()
	m.ObserveRequest("GET", "/api/menus", 200, 15*time.Millisecond)
	m.ObserveRequest("GET", "/api/menus", 200, 20*time.Millisecond)
	m.ObserveRequest("PUT", "/api/menus/{id}", 500, time.Millisecond)
	m.ObserveSave(nil)
	m.ObserveSave(fmt.Errorf("wrap: %w", domain.ErrSaveInProgress))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `atendente_api_requests_total{method="GET",route="/api/menus",status="200"} 2`)
	assert.Contains(t, text, `atendente_api_requests_total{method="PUT",route="/api/menus/{id}",status="500"} 1`)
	assert.Contains(t, text, `atendente_step_saves_total{result="ok"} 1`)
	assert.Contains(t, text, `atendente_step_saves_total{result="conflict"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *observability.Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Second)
		m.ObserveBuild(&flowgraph.Graph{})
		m.ObserveSave(errors.New("x"))
		_ = m.Handler()
	})
}

func TestSaveResult(t *testing.T) {
	assert.Equal(t, "ok", observability.SaveResult(nil))
	assert.Equal(t, "unauthorized", observability.SaveResult(domain.ErrUnauthorized))
	assert.Equal(t, "invalid", observability.SaveResult(domain.ErrDanglingOption))
	assert.Equal(t, "error", observability.SaveResult(errors.New("boom")))
}
