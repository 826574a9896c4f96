package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAndServes(t *testing.T) {
	m := New()
	m.FilesIndexed.Inc()
	m.MarkovEdges.WithLabelValues("call_flow").Set(42)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "codelens_indexer_files_indexed_total 1")
	assert.Contains(t, body, `codelens_markov_chain_edges{chain="call_flow"} 42`)
}
