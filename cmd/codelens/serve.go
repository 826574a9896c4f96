package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solanumlabs/codelens/internal/apperr"
	"github.com/solanumlabs/codelens/internal/clicfg"
	"github.com/solanumlabs/codelens/internal/indexer"
	"github.com/solanumlabs/codelens/internal/metrics"
	"github.com/solanumlabs/codelens/internal/retrieval"
	"github.com/solanumlabs/codelens/internal/store"
	"github.com/solanumlabs/codelens/internal/store/fuzzycache"
	"github.com/solanumlabs/codelens/pkg/types"
)

func newServeCmd() *cobra.Command {
	var addr, metricsAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the retrieval API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":7420", "HTTP listen address for the retrieval API")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "HTTP listen address for Prometheus metrics (default: metrics_addr from the config file; empty disables)")
	return cmd
}

func runServe(ctx context.Context, addr, metricsAddr string) error {
	log := buildLogger()
	defer log.Sync() //nolint:errcheck

	root, err := filepath.Abs(globals.projectPath)
	if err != nil {
		return argError{err}
	}
	cfg, err := clicfg.Load(root, globals.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if metricsAddr == "" {
		metricsAddr = cfg.MetricsAddr
	}

	st, err := openStore(root, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	cache, err := fuzzycache.New()
	if err != nil {
		return err
	}

	idxCfg := indexer.Config{
		Root:        root,
		Walk:        cfg.Walk,
		SizeCeiling: cfg.SizeCeiling,
		Workers:     cfg.Workers,
	}
	ix := indexer.New(idxCfg, st, defaultRegistry(), log)
	svc := retrieval.New(st, cache, ix, root, log)

	var mtr *metrics.Metrics
	if metricsAddr != "" {
		mtr = metrics.New()
		go serveMetrics(metricsAddr, mtr, log)
	}

	mux := http.NewServeMux()
	h := &apiHandler{svc: svc, log: log, metrics: mtr}
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/v1/search_symbols", h.handleSearchSymbols)
	mux.HandleFunc("/v1/get_function", h.handleGetFunction)
	mux.HandleFunc("/v1/get_class", h.handleGetClass)
	mux.HandleFunc("/v1/find_references", h.handleFindReferences)
	mux.HandleFunc("/v1/trace_calls", h.handleTraceCalls)
	mux.HandleFunc("/v1/get_related_context", h.handleGetRelatedContext)
	mux.HandleFunc("/v1/get_architecture_overview", h.handleArchitectureOverview)
	mux.HandleFunc("/v1/sync_index", h.handleSyncIndex)

	server := &http.Server{Addr: addr, Handler: mux}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		_ = server.Shutdown(context.Background())
	}()

	fmt.Println(colorCyan(fmt.Sprintf("serving retrieval API on %s", addr)))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func serveMetrics(addr string, m *metrics.Metrics, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	log.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil { //nolint:gosec
		log.Error("metrics server stopped", zap.Error(err))
	}
}

type apiHandler struct {
	svc     *retrieval.Service
	log     *zap.Logger
	metrics *metrics.Metrics
}

func (h *apiHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *apiHandler) handleSearchSymbols(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := types.SearchOptions{
		Query:    q.Get("query"),
		Kind:     q.Get("kind"),
		Language: q.Get("language"),
		Limit:    atoiDefault(q.Get("limit"), 0),
		Offset:   atoiDefault(q.Get("offset"), 0),
	}
	results, err := h.svc.SearchSymbols(opts)
	if writeError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *apiHandler) handleGetFunction(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sym, err := h.svc.GetFunction(q.Get("file"), q.Get("name"))
	if writeError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, sym)
}

func (h *apiHandler) handleGetClass(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sym, err := h.svc.GetClass(q.Get("file"), q.Get("name"))
	if writeError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, sym)
}

func (h *apiHandler) handleFindReferences(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.FindReferences(r.URL.Query().Get("name"))
	if writeError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *apiHandler) handleTraceCalls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	depth := atoiDefault(q.Get("depth"), 10)
	paths, err := h.svc.TraceCalls(q.Get("function_name"), depth)
	if writeError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, paths)
}

func (h *apiHandler) handleGetRelatedContext(w http.ResponseWriter, r *http.Request) {
	ctx, err := h.svc.GetRelatedContext(r.URL.Query().Get("name"))
	if writeError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, ctx)
}

func (h *apiHandler) handleArchitectureOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.GetArchitectureOverview(r.URL.Query().Get("focus"))
	if writeError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *apiHandler) handleSyncIndex(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SyncIndex(r.Context())
	if writeError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err as a JSON error response and returns true when
// one was written, mapping the apperr taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	var notFound *apperr.NotFound
	var ambiguous *apperr.Ambiguous
	var resolverErr *apperr.ResolverError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &ambiguous):
		status = http.StatusConflict
	case errors.As(err, &resolverErr):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
	return true
}
