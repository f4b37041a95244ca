package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"loom/internal/api"
	"loom/internal/config"
	"loom/internal/ingest"
	"loom/internal/logging"
	"loom/internal/objstore"
	"loom/internal/services"
)

const maxWebhookBody = 4 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	completedStatus string

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, errors.New("api server requires config and daemon")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:            bind,
		logger:          logging.NewComponentLogger(logger, "api"),
		daemon:          d,
		completedStatus: cfg.Ingest.CompletedStatus,
	}

	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/sessions", srv.handleSessions)
	mux.HandleFunc("/api/webhook", srv.handleWebhook)
	mux.HandleFunc("/o/", srv.handleObject)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status, err := s.daemon.Status(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	events := make(map[string]int, len(status.Events))
	for key, count := range status.Events {
		events[string(key)] = count
	}
	processed, failed := s.daemon.processor.Counts()
	s.writeJSON(w, http.StatusOK, api.StatusResponse{
		Running:   status.Running,
		Events:    events,
		Processed: processed,
		Failed:    failed,
		DBPath:    status.DBPath,
	})
}

func (s *apiServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sessions, err := s.daemon.store.ListSessions(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.SessionListResponse{Sessions: sessions})
}

func (s *apiServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	payload, err := ingest.ParsePayload(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ingest.Validate(payload, s.completedStatus); err != nil {
		if errors.Is(err, services.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	event, err := s.daemon.store.EnqueueEvent(r.Context(), payload.Contact.Variables.TenantID, string(body))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("webhook event queued",
		logging.Int64("event_id", event.ID),
		logging.String("tenant_id", event.TenantID))
	s.writeJSON(w, http.StatusAccepted, api.WebhookResponse{EventID: event.ID})
}

// handleObject serves bucket objects from tokenized download URLs. Objects
// that carry download tokens require a matching token; untokenized objects
// are internal pipeline media and are served as-is.
func (s *apiServer) handleObject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	objectPath, token, err := objstore.ParseObjectURL(r.URL.Path, r.URL.RawQuery)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid object URL")
		return
	}

	bucket := s.daemon.bucket
	meta, err := bucket.Metadata(objectPath)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "object not found")
		return
	}
	if strings.TrimSpace(meta[objstore.MetadataKeyDownloadTokens]) != "" && !bucket.VerifyToken(objectPath, token) {
		s.writeError(w, http.StatusForbidden, "invalid download token")
		return
	}

	reader, err := bucket.Open(objectPath)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "object not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer reader.Close()

	contentType := objectContentType(path.Ext(objectPath))
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Warn("object stream interrupted",
			logging.String("object", objectPath),
			logging.Error(err))
	}
}

// mediaContentTypes covers the extensions the pipeline produces. The host
// mime database is the fallback for anything else.
var mediaContentTypes = map[string]string{
	".mp4": "video/mp4",
	".png": "image/png",
}

func objectContentType(ext string) string {
	if contentType, ok := mediaContentTypes[strings.ToLower(ext)]; ok {
		return contentType
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	if err := encoder.Encode(payload); err != nil {
		s.logger.Warn("encode api response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
