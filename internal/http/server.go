// Package http exposes the tracker as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
	"budget/internal/session"
	"budget/internal/tracker"
)

// Tracker is the application service the handlers forward to.
type Tracker interface {
	SelectYear(ctx context.Context, year int) error
	SelectMonth(monthIndex int) error
	View() (tracker.View, error)
	UpdateIncome(ctx context.Context, delta core.Money) (core.Money, error)
	AddExpense(ctx context.Context, dayKey, description string, amount core.Money) (core.ExpenseItem, error)
	RemoveExpense(ctx context.Context, dayKey, itemID string) error
	SignUp(ctx context.Context, name, email, password string) (core.Identity, error)
	SignIn(ctx context.Context, email, password string) (core.Identity, error)
	SignInWithProvider(ctx context.Context) (core.Identity, error)
	SignOut(ctx context.Context) error
	Session() (session.State, *core.Identity)
}

type Server struct {
	http.Server
	tracker  Tracker
	currency string
	logger   *log.Logger
	limiter  *ratelimit.Limiter
}

// Option configures a Server.
type Option func(*Server)

// WithCurrency sets the ISO code used for display strings.
func WithCurrency(code string) Option {
	return func(s *Server) { s.currency = code }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l.WithComponent(log.ComponentHTTP) }
}

// WithAuthLimit caps authentication attempts per client per minute.
func WithAuthLimit(perMinute int) Option {
	return func(s *Server) {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute})
	}
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, t Tracker, opts ...Option) *Server {
	s := &Server{
		tracker:  t,
		currency: core.DefaultCurrency,
		logger:   log.FromContext(context.Background()).WithComponent(log.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("POST /api/income", s.handleUpdateIncome)
	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("DELETE /api/expenses", s.handleRemoveExpense)
	mux.HandleFunc("GET /api/session", s.handleSession)

	limited := s.limiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(),
			"Authentication attempts limited",
			log.FieldClientIP, extractClientIP(r),
			"active_clients", s.limiter.ActiveClients())
		writeError(w, r, http.StatusTooManyRequests, "too many attempts, try again later")
	})
	mux.Handle("POST /api/auth/signup", limited(http.HandlerFunc(s.handleSignUp)))
	mux.Handle("POST /api/auth/signin", limited(http.HandlerFunc(s.handleSignIn)))
	mux.Handle("POST /api/auth/provider", limited(http.HandlerFunc(s.handleProviderSignIn)))
	mux.HandleFunc("POST /api/auth/signout", s.handleSignOut)

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(extractClientIP).Middleware(handler)
	handler = log.Middleware(s.logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
