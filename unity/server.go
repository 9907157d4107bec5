package unity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deersim/deer-rl/types"
)

const pollWindow = 30 * time.Second

// Session is one connected simulation. Commands flow to the
// simulation through its poll requests, reports flow back.
type Session struct {
	ID string

	commands chan command
	reports  chan stepReport
	closed   chan struct{}
}

func newSession() *Session {
	return &Session{
		ID:       uuid.New().String(),
		commands: make(chan command, 1),
		reports:  make(chan stepReport, 1),
		closed:   make(chan struct{}),
	}
}

// Send queues a command for the simulation's next poll.
func (s *Session) Send(ctx context.Context, cmd command) error {
	select {
	case s.commands <- cmd:
		return nil
	case <-s.closed:
		return errors.New("session closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Await blocks until the simulation reports the outcome of the
// last command.
func (s *Session) Await(ctx context.Context) (stepReport, error) {
	select {
	case rep := <-s.reports:
		return rep, nil
	case <-s.closed:
		return stepReport{}, errors.New("session closed")
	case <-ctx.Done():
		return stepReport{}, ctx.Err()
	}
}

// drain discards a stale report left over from an abandoned step.
func (s *Session) drain() {
	select {
	case <-s.reports:
	default:
	}
}

// Server accepts simulation connections and validates their declared
// spaces against the configured schema before admitting a session.
type Server struct {
	Addr   string
	ctx    context.Context
	server *http.Server

	envName  string
	obsSpace *types.Dict
	actSpace types.Box

	lock     *sync.Mutex
	sessions map[string]*Session
	latest   *Session
}

func NewServer(ctx context.Context, addr string, envName string, obsSpace *types.Dict, actSpace types.Box) *Server {
	s := &Server{
		Addr:     addr,
		ctx:      ctx,
		envName:  envName,
		obsSpace: obsSpace,
		actSpace: actSpace,
		lock:     new(sync.Mutex),
		sessions: make(map[string]*Session),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.POST("/session", s.handleSession)
	r.POST("/poll", s.handlePoll)
	r.POST("/report", s.handleReport)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}

	return s
}

func (s *Server) handleSession(c *gin.Context) {
	h := handshake{}
	if err := c.ShouldBindJSON(&h); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}
	if h.EnvName != s.envName {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown env %q, expected %q", h.EnvName, s.envName)})
		return
	}
	if h.ObservationSpace == nil || !h.ObservationSpace.Equal(s.obsSpace) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "observation space does not match the configured schema"})
		return
	}
	if !h.ActionSpace.Equal(s.actSpace) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action space does not match the configured schema"})
		return
	}

	sess := newSession()
	s.lock.Lock()
	s.sessions[sess.ID] = sess
	s.latest = sess
	s.lock.Unlock()

	fmt.Printf("Simulation connected: session %s\n", sess.ID)

	c.JSON(http.StatusOK, handshakeResponse{Session: sess.ID})
}

func (s *Server) handlePoll(c *gin.Context) {
	req := pollRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}
	sess, ok := s.session(req.Session)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such session"})
		return
	}

	select {
	case cmd := <-sess.commands:
		if cmd.Type == CommandClose {
			s.remove(sess)
		}
		c.JSON(http.StatusOK, cmd)
	case <-sess.closed:
		c.JSON(http.StatusOK, command{Type: CommandClose})
	case <-c.Request.Context().Done():
	case <-s.ctx.Done():
		c.JSON(http.StatusOK, command{Type: CommandClose})
	case <-time.After(pollWindow):
		c.JSON(http.StatusOK, command{Type: CommandWait})
	}
}

func (s *Server) handleReport(c *gin.Context) {
	rep := stepReport{}
	if err := c.ShouldBindJSON(&rep); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}
	sess, ok := s.session(rep.Session)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such session"})
		return
	}

	select {
	case sess.reports <- rep:
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	case <-sess.closed:
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	case <-c.Request.Context().Done():
	case <-s.ctx.Done():
	}
}

func (s *Server) session(id string) (*Session, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) remove(sess *Session) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.sessions, sess.ID)
	if s.latest == sess {
		s.latest = nil
	}
	close(sess.closed)
}

// Handler exposes the HTTP interface the simulation talks to.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() {
	go func() {
		s.server.ListenAndServe()
	}()

	go func() {
		<-s.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}()
}

// WaitForSession blocks until a simulation completes a handshake.
func (s *Server) WaitForSession(timeout time.Duration) (*Session, bool) {
	deadline := time.After(timeout)
	for {
		select {
		case <-s.ctx.Done():
			return nil, false
		case <-deadline:
			return nil, false
		case <-time.After(1 * time.Millisecond):
		}
		s.lock.Lock()
		latest := s.latest
		s.lock.Unlock()
		if latest != nil {
			return latest, true
		}
	}
}
