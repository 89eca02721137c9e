package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dasmlab/vartrans/pkg/service"
	"github.com/dasmlab/vartrans/pkg/translate"
)

// maxBodyBytes bounds POST bodies; the gateway translates identifiers, not
// documents.
const maxBodyBytes = 64 << 10

// eventPollInterval is how often the SSE endpoint re-reads a request.
var eventPollInterval = 250 * time.Millisecond

// HTTPServer exposes the gateway over plain HTTP: translation, cache and
// request inspection, health and metrics.
type HTTPServer struct {
	svc    *service.TranslationService
	logger *logrus.Logger
	port   int
	srv    *http.Server
}

// NewHTTPServer creates an HTTP server for svc listening on port.
func NewHTTPServer(svc *service.TranslationService, logger *logrus.Logger, port int) *HTTPServer {
	if logger == nil {
		logger = logrus.New()
	}
	s := &HTTPServer{svc: svc, logger: logger, port: port}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routing table.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/translate", s.handleTranslate)
	mux.HandleFunc("GET /api/v1/cache", s.handleCache)
	// GET /api/v1/requests/{id} returns the record, .../events streams it.
	mux.HandleFunc("GET /api/v1/requests/{id}", s.handleRequestStatus)
	mux.HandleFunc("GET /api/v1/requests/{id}/events", s.handleRequestEvents)

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start listens until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"port": s.port,
	}).Info("Starting HTTP server")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type translateBody struct {
	Text       string `json:"text"`
	Engine     string `json:"engine,omitempty"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
}

type translateReply struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	Engine     string `json:"engine"`
	Cached     bool   `json:"cached"`
	RequestID  string `json:"request_id"`
}

func (s *HTTPServer) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var body translateBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}

	res, id, err := s.svc.TranslateRequest(r.Context(), translate.GatewayRequest{
		Text:       body.Text,
		SourceLang: body.SourceLang,
		TargetLang: body.TargetLang,
		Engine:     body.Engine,
	})
	if err != nil {
		writeError(w, httpStatus(err), status.Convert(err).Message())
		return
	}

	writeJSON(w, http.StatusOK, translateReply{
		Text:       res.Text,
		TargetLang: string(res.Target),
		Engine:     string(res.Engine),
		Cached:     res.Cached,
		RequestID:  id,
	})
}

func (s *HTTPServer) handleCache(w http.ResponseWriter, r *http.Request) {
	entries := s.svc.Client.Cache().Entries()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

func (s *HTTPServer) handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Requests.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleRequestEvents streams the request record as Server-Sent Events
// until it is no longer pending.
func (s *HTTPServer) handleRequestEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := s.svc.Requests.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.sendSSEEvent(w, "status", rec)
	if rec.Status != service.RequestPending {
		return
	}

	ticker := time.NewTicker(eventPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			rec, err := s.svc.Requests.Get(id)
			if err != nil {
				return
			}
			if rec.Status != service.RequestPending {
				s.sendSSEEvent(w, "status", rec)
				return
			}
		}
	}
}

func (s *HTTPServer) sendSSEEvent(w http.ResponseWriter, eventType string, rec service.RequestRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal SSE event")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", data)

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func httpStatus(err error) int {
	switch status.Code(err) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Canceled, codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
