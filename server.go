package coiserve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

var errNotDirectory = errors.New("not a directory")

type Config struct {
	// Host to listen on. All interfaces if empty.
	Host string
	// Port to listen on. Port 0 picks a free port.
	Port int
	// Document root that files are served from.
	Root string
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
}

// Server is a static file server adding cross-origin isolation
// and caching headers to every response.
// Its lifecycle is Stopped -> Listening -> Stopped; a stopped server cannot be restarted.
type Server struct {
	config Config
	log    zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
	stopped  bool
}

// New creates a server for the given config.
// Nothing is validated or bound until Listen (or Start) is called.
func New(config Config) *Server {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	} else {
		logger = *config.Logger
	}
	return &Server{
		config: config,
		log:    logger.With().Str("root", config.Root).Logger(),
	}
}

// Start binds the listener and serves until Stop is called.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Listen validates the document root and binds the listening socket.
// It returns a *ConfigError if the root is unusable and a *BindError if the address cannot be bound.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrServerClosed
	}
	if s.listener != nil {
		return errors.New("coiserve: already listening")
	}
	if err := checkRoot(s.config.Root); err != nil {
		return err
	}
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &BindError{Addr: addr, Err: err}
	}
	s.listener = ln
	s.srv = &http.Server{Handler: s.Handler()}
	return nil
}

// Serve serves requests on the bound listener. It blocks until Stop is called,
// in which case it returns nil.
func (s *Server) Serve() error {
	s.mu.Lock()
	srv, ln, stopped := s.srv, s.listener, s.stopped
	s.mu.Unlock()
	if stopped {
		return ErrServerClosed
	}
	if ln == nil {
		return errors.New("coiserve: not listening")
	}
	s.log.Debug().Msgf("Accepting connections on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes the listener and waits for in-flight requests to complete,
// or for ctx to be done. Calling Stop more than once is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	srv, ln := s.srv, s.listener
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.log.Info().Msg("Shutting down")
	err := srv.Shutdown(ctx)
	// in case Serve was never called
	ln.Close()
	return err
}

// Addr returns the bound address, or nil if not listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Handler returns the complete request handler: the file server for the document root
// wrapped with the header policy, request logging and panic recovery.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Handle("/*", http.FileServer(http.Dir(s.config.Root)))
	return r
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &ConfigError{Field: "root", Value: root, Err: err}
	}
	if !info.IsDir() {
		return &ConfigError{Field: "root", Value: root, Err: errNotDirectory}
	}
	return nil
}
