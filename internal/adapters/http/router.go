package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tdis/disaster-chatbot/internal/core/ports"
	"github.com/tdis/disaster-chatbot/internal/observability/metrics"
)

type Router struct {
	chat    ports.ChatService
	corpus  ports.CorpusManager
	status  ports.CorpusStatusReader
	metrics *metrics.HTTPServerMetrics
	options Options
}

type Options struct {
	ServiceName       string
	APIRateLimitRPS   float64
	APIRateLimitBurst int
	MaxInFlight       int
}

func NewRouter(
	chat ports.ChatService,
	corpus ports.CorpusManager,
	status ports.CorpusStatusReader,
	serverMetrics *metrics.HTTPServerMetrics,
	options Options,
) *Router {
	if options.ServiceName == "" {
		options.ServiceName = "api"
	}
	return &Router{
		chat:    chat,
		corpus:  corpus,
		status:  status,
		metrics: serverMetrics,
		options: options,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/api/chat", rt.chatHandler)
	mux.HandleFunc("/api/health", rt.healthHandler)
	mux.HandleFunc("/api/corpus-status", rt.corpusStatusHandler)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.options.ServiceName, handler)
	}
	if rt.options.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.options.MaxInFlight, 50*time.Millisecond)
	}
	if rt.options.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.options.APIRateLimitRPS, rt.options.APIRateLimitBurst)
	}
	handler = corsMiddleware(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// chatHandler answers one question. A corpus that is still loading is not an
// error; the answer just degrades to the static description.
func (rt *Router) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeDetail(w, http.StatusBadRequest, "text is required")
		return
	}

	start := time.Now()
	answer, err := rt.chat.Answer(r.Context(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordChatObservation(rt.options.ServiceName, answer.ContextCount, time.Since(start))
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": answer.Text})
}

// healthHandler doubles as the load trigger: the first call after startup
// kicks off corpus ingestion, later calls report progress.
func (rt *Router) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rt.corpus.TriggerLoad(r.Context())
	snapshot := rt.corpus.Snapshot()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"data_loaded":  snapshot.Loaded(),
		"data_loading": snapshot.Loading(),
	})
}

func (rt *Router) corpusStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status, err := rt.status.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeError(w http.ResponseWriter, err error) {
	writeDetail(w, mapErrorToHTTPStatus(err), err.Error())
}
