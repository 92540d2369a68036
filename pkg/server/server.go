package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	glinterr "github.com/glint-ui/glint/internal/errors"
	"github.com/glint-ui/glint/pkg/hydrate"
	"github.com/glint-ui/glint/pkg/render"
)

// SessionHeader carries the session id of a streamed page so the client
// can attach its websocket.
const SessionHeader = "X-Glint-Session"

// Server streams rendered pages over HTTP and manages per-page document
// sessions: hydration scheduling and event replay over a websocket.
type Server struct {
	cfg            Config
	log            *slog.Logger
	router         chi.Router
	upgrader       websocket.Upgrader
	metrics        *serverMetrics
	hydrateMetrics *hydrate.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
}

// New validates the configuration and creates a server.
func New(cfg Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	s := &Server{
		cfg:            cfg,
		log:            cfg.Logger,
		metrics:        newServerMetrics(cfg.Registry),
		hydrateMetrics: hydrate.NewMetrics(hydrate.WithRegistry(cfg.Registry)),
		sessions:       make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.handleWS)
	r.Get("/*", s.handlePage)
	s.router = r

	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	s.log.Info("listening", "addr", s.cfg.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Session returns a live session by id, or nil.
func (s *Server) Session(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *Server) addSession(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.metrics.activeSessions.Inc()

	time.AfterFunc(s.cfg.SessionTTL, func() { s.dropSession(sess.ID) })
}

func (s *Server) dropSession(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		s.metrics.activeSessions.Dec()
	}
}

// handlePage streams the rendered page, then hands the registered islands
// to the session's scheduler.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	flusher, _ := w.(http.Flusher)

	sess, err := newSession(uuid.NewString(), s.cfg, s.metrics, s.hydrateMetrics)
	if err != nil {
		s.log.Error("session setup failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(SessionHeader, sess.ID)

	wrote := false
	result, err := render.Stream(r.Context(), s.cfg.Page(r), render.StreamOptions{
		OnChunk: func(c render.Chunk) error {
			if _, werr := w.Write([]byte(c.Payload)); werr != nil {
				return werr
			}
			if flusher != nil {
				flusher.Flush()
			}
			wrote = true
			s.metrics.chunksEmitted.Inc()
			s.metrics.bytesStreamed.Add(float64(len(c.Payload)))
			return nil
		},
		OnError: func(err error) {
			category := string(glinterr.CategoryOf(err))
			if category == "" {
				category = "internal"
			}
			s.metrics.renderErrors.WithLabelValues(category).Inc()
		},
		EnableSuspense:    s.cfg.EnableSuspense,
		PriorityThreshold: s.cfg.PriorityThreshold,
		ChunkSize:         s.cfg.ChunkSize,
		Timeout:           s.cfg.StreamTimeout,
		Logger:            s.cfg.Logger,
	})
	if err != nil {
		s.log.Error("stream aborted", "path", r.URL.Path, "err", err)
		if !wrote {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	s.log.Info("page streamed", "path", r.URL.Path,
		"chunks", result.Chunks, "bytes", result.Bytes, "islands", len(result.Islands))

	s.addSession(sess)
	sess.scheduler.ScheduleAll(result.Islands)
}

// handleWS attaches a client websocket to its document session and
// consumes event frames into the replay buffer.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := s.Session(r.URL.Query().Get("session"))
	if sess == nil {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	sess.attach(conn)
	go sess.readLoop(conn)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
