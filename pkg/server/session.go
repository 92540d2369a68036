package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	glinterr "github.com/glint-ui/glint/internal/errors"
	"github.com/glint-ui/glint/pkg/hydrate"
	"github.com/glint-ui/glint/pkg/protocol"
	"github.com/glint-ui/glint/pkg/replay"
)

// Session is one document session: the hydration scheduler and replay
// buffer that outlive the page render until the client is fully active.
type Session struct {
	ID      string
	created time.Time

	scheduler *hydrate.Scheduler
	buffer    *replay.Buffer
	log       *slog.Logger
	metrics   *serverMetrics

	connMu sync.Mutex
	conn   *websocket.Conn
}

func newSession(id string, cfg Config, metrics *serverMetrics, hm *hydrate.Metrics) (*Session, error) {
	sess := &Session{
		ID:      id,
		created: time.Now(),
		log:     cfg.Logger.With("session", id),
		metrics: metrics,
	}

	// Recording starts with the session, before any island activates:
	// input can arrive the moment the document exists.
	sess.buffer = replay.NewBuffer(replay.BufferConfig{
		Dispatcher: replay.DispatcherFunc(sess.dispatch),
		Logger:     cfg.Logger,
	})
	sess.buffer.StartRecording()

	scheduler, err := hydrate.NewScheduler(hydrate.SchedulerConfig{
		MaxConcurrency:    cfg.MaxConcurrency,
		ActivationTimeout: cfg.ActivationTimeout,
		Activator:         cfg.Activator,
		Resolver:          cfg.Resolver,
		Logger:            cfg.Logger,
		Metrics:           hm,
		OnHydrated:        func(*hydrate.Island) { sess.maybeReplay() },
	})
	if err != nil {
		return nil, err
	}
	sess.scheduler = scheduler
	return sess, nil
}

// Scheduler returns the session's hydration scheduler.
func (s *Session) Scheduler() *hydrate.Scheduler {
	return s.scheduler
}

// Buffer returns the session's event replay buffer.
func (s *Session) Buffer() *replay.Buffer {
	return s.buffer
}

// attach binds a websocket connection to the session, replacing any
// previous one, and retries replay in case activation finished while the
// client was disconnected.
func (s *Session) attach(conn *websocket.Conn) {
	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	s.maybeReplay()
}

func (s *Session) detach(conn *websocket.Conn) {
	s.connMu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.connMu.Unlock()
}

// maybeReplay replays buffered events once no island is pending or
// loading. Replay failures keep the undispatched remainder buffered; a
// later attach or hydration retries.
func (s *Session) maybeReplay() {
	st := s.scheduler.Status()
	if st.Pending > 0 || st.Loading > 0 {
		return
	}
	if s.buffer.Len() == 0 {
		return
	}
	go func() {
		if err := s.buffer.Replay(context.Background()); err != nil {
			s.log.Warn("event replay incomplete", "err", err)
		}
	}()
}

// dispatch forwards one replayed event to the client as an event frame.
func (s *Session) dispatch(_ context.Context, ev replay.Event) error {
	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()

	if conn == nil {
		return glinterr.New("G300", glinterr.CategoryActivation, "session has no client connection")
	}

	frame, err := protocol.EncodeEvent(ev)
	if err != nil {
		return err
	}
	data, err := frame.Encode()
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return err
	}
	s.metrics.eventsReplayed.Inc()
	return nil
}

// readLoop consumes client frames until the connection drops.
func (s *Session) readLoop(conn *websocket.Conn) {
	defer s.detach(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			s.log.Warn("bad frame from client", "err", err)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(frame)
			if err != nil {
				s.log.Warn("bad event frame from client", "err", err)
				continue
			}
			s.buffer.Record(ev)
			s.metrics.eventsRecorded.Inc()
		case protocol.FrameControl:
			if string(frame.Payload) == "replay" {
				s.maybeReplay()
			}
		}
	}
}
