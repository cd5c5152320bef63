package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchengine/internal/engine"
)

const (
	maxRecvSize     = 4 * 1024
	defaultNWorkers = 10
	defaultConnIdle = 30 * time.Second
)

var ErrSessionUnknown = errors.New("transport: client session does not exist")

// clientSession tracks one connected TCP client.
type clientSession struct {
	id   string
	conn net.Conn
}

// clientMessage links a parsed wire message to the session that sent
// it. err carries a read/parse failure through to handleMessage
// instead of being swallowed at the point it occurred -- message is
// nil whenever err is set.
type clientMessage struct {
	sessionID string
	message   Message
	err       error
}

// Server is the TCP front end for an engine.Engine: it accepts
// connections, decodes the wire protocol, drives the engine, and
// writes execution/error reports back to the originating session.
// This is the "message-passing harness" the core treats as an
// external collaborator -- internal/engine has no knowledge of this
// package.
type Server struct {
	address string
	port    int
	eng     *engine.Engine
	pool    WorkerPool

	cancel context.CancelFunc

	mu          sync.Mutex
	sessions    map[string]*clientSession
	clOrdOwners map[string]string // clOrdID -> owning session id, for report routing

	inbox chan clientMessage
}

// New returns a Server bound to address:port, driving eng.
func New(address string, port int, eng *engine.Engine) *Server {
	return &Server{
		address:     address,
		port:        port,
		eng:         eng,
		pool:        NewWorkerPool(defaultNWorkers),
		sessions:    make(map[string]*clientSession),
		clOrdOwners: make(map[string]string),
		inbox:       make(chan clientMessage, 1),
	}
}

// Shutdown cancels the server's run loop.
func (s *Server) Shutdown() {
	log.Info().Msg("transport: server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run starts the listener, worker pool, and session handler, and
// blocks until ctx is cancelled or the listener fails to start.
func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("transport: unable to start listener")
		return
	}
	// Closing the listener on cancellation unblocks Accept below; the
	// deferred Shutdown cancels ctx on every return path.
	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("transport: error closing listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		return s.sessionLoop(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("transport: server listening")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error().Err(err).Msg("transport: error accepting connection")
				continue
			}
			id := s.addSession(conn)
			log.Info().Str("session", id).Str("remote", conn.RemoteAddr().String()).Msg("transport: client connected")
			s.pool.AddTask(sessionTask{id: id, conn: conn})
		}
	}
}

// sessionTask is the unit of work handed to the worker pool: read one
// message off a connection, tagged with the session it belongs to.
type sessionTask struct {
	id   string
	conn net.Conn
}

func (s *Server) sessionLoop(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case msg := <-s.inbox:
			if err := s.handleMessage(msg); err != nil {
				log.Error().Err(err).Str("session", msg.sessionID).Msg("transport: error handling message")
				s.sendReport(msg.sessionID, ErrorToReport(err))
			}
		}
	}
}

func (s *Server) handleMessage(msg clientMessage) error {
	if msg.err != nil {
		return msg.err
	}
	switch m := msg.message.(type) {
	case NewOrderMessage:
		order := m.Order()
		s.mu.Lock()
		s.clOrdOwners[order.ClOrdID] = msg.sessionID
		s.mu.Unlock()

		if err := s.eng.PlaceOrder(order); err != nil {
			return err
		}
		s.runMatchAndReport()
		return nil

	case CancelOrderMessage:
		// Order cancellation is a Non-goal of the core matching engine
		// (spec); the wire message is accepted but never honored.
		return ErrNotImplemented

	case LogBookMessage:
		bids, offers := s.eng.FullDepth()
		log.Info().Int("bidLevels", len(bids)).Int("offerLevels", len(offers)).
			Uint64("tasksProcessed", s.pool.Processed()).Msg("transport: book log requested")
		return nil

	default:
		return ErrUnknownMessageType
	}
}

// runMatchAndReport triggers a match cycle and routes each resulting
// fill back to the session that placed its order, if still connected.
func (s *Server) runMatchAndReport() {
	fills := s.eng.Match()
	for _, f := range fills {
		s.mu.Lock()
		sessionID, ok := s.clOrdOwners[f.ClOrdID]
		s.mu.Unlock()
		if !ok {
			continue
		}
		s.sendReport(sessionID, FillToReport(f))
	}
}

func (s *Server) sendReport(sessionID string, r Report) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return
	}
	if _, err := session.conn.Write(r.Serialize()); err != nil {
		log.Error().Err(err).Str("session", sessionID).Msg("transport: failed writing report")
		s.removeSession(sessionID)
	}
}

// handleConnection reads exactly one message off the connection,
// forwards it to the session loop, and re-enqueues the connection so
// the pool keeps servicing it. A read error, or a failure to set the
// read deadline, tears the session down; a parse error is forwarded to
// the session loop, which reports it to the client, and the connection
// stays enqueued. This method never returns a fatal error to the pool
// itself.
func (s *Server) handleConnection(t *tomb.Tomb, st sessionTask) error {
	select {
	case <-t.Dying():
		return nil
	default:
	}

	if err := st.conn.SetReadDeadline(time.Now().Add(defaultConnIdle)); err != nil {
		log.Error().Err(err).Str("session", st.id).Msg("transport: failed to set read deadline")
		s.removeSession(st.id)
		return nil
	}

	buf := make([]byte, maxRecvSize)
	n, err := st.conn.Read(buf)
	if err != nil {
		log.Debug().Err(err).Str("session", st.id).Msg("transport: connection closed")
		s.removeSession(st.id)
		return nil
	}

	message, err := ParseMessage(buf[:n])
	if err != nil {
		log.Error().Err(err).Str("session", st.id).Msg("transport: failed parsing message")
		s.inbox <- clientMessage{sessionID: st.id, err: err}
		s.pool.AddTask(st)
		return nil
	}

	s.inbox <- clientMessage{sessionID: st.id, message: message}
	s.pool.AddTask(st)
	return nil
}

func (s *Server) addSession(conn net.Conn) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &clientSession{id: id, conn: conn}
	return id
}

func (s *Server) removeSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		_ = session.conn.Close()
		delete(s.sessions, id)
	}
}
