// Package auth tracks the authenticated identity and decides role-based page
// admission. It is a navigation-level gate only: the login check accepts any
// non-empty credential pair and must be replaced by a real identity provider
// before this restricts anything that matters.
package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"opsdesk/pkg/domain"
)

const sessionIOTimeout = 5 * time.Second

// State is the gate's session state machine: Unknown until the persisted
// session check completes, then Authenticated or Unauthenticated for the rest
// of the session.
type State int

// Gate states.
const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

// Routes the gate redirects to.
const (
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
	RouteProjects  = "/projects"
	RouteLeads     = "/leads"
)

// DecisionKind classifies an admission decision.
type DecisionKind int

const (
	// DecisionPending means the session state is still Unknown; the caller
	// must wait (render a loading state) rather than decide.
	DecisionPending DecisionKind = iota
	// DecisionGrant admits the caller.
	DecisionGrant
	// DecisionLogin denies admission; redirect to the login entry point.
	DecisionLogin
	// DecisionRedirect denies admission for role reasons; redirect to the
	// role's default page.
	DecisionRedirect
)

// Decision is the outcome of an admission check.
type Decision struct {
	Kind     DecisionKind
	Redirect string
}

// DefaultRoute maps a role to its landing page.
func DefaultRoute(role domain.Role) string {
	switch role {
	case domain.RoleTechLead:
		return RouteProjects
	case domain.RoleTelecaller:
		return RouteLeads
	default:
		return RouteDashboard
	}
}

// Gate holds the singleton session and persists it through the mirror.
type Gate struct {
	mu     sync.RWMutex
	state  State
	user   domain.User
	mirror domain.Mirror
	logger *zap.Logger
}

// NewGate constructs a gate and synchronously resolves the persisted session.
// A missing or unreadable session record resolves to Unauthenticated.
func NewGate(mirror domain.Mirror, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{state: StateUnknown, mirror: mirror, logger: logger}
	g.restore()
	return g
}

func (g *Gate) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), sessionIOTimeout)
	defer cancel()
	payload, err := g.mirror.Read(ctx, domain.BucketSession)
	if err != nil {
		g.logger.Warn("restore session", zap.Error(err))
		g.state = StateUnauthenticated
		return
	}
	if payload == nil {
		g.state = StateUnauthenticated
		return
	}
	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		g.logger.Warn("decode session", zap.Error(err))
		g.state = StateUnauthenticated
		return
	}
	if !session.LoggedIn {
		g.state = StateUnauthenticated
		return
	}
	g.user = session.User
	g.state = StateAuthenticated
}

// Login succeeds whenever both email and password are non-empty. On success
// the session is stored and persisted immediately (not debounced); on failure
// there are no side effects.
func (g *Gate) Login(email, password string, role domain.Role) bool {
	if email == "" || password == "" {
		return false
	}
	g.mu.Lock()
	g.user = domain.User{Email: email, Role: role}
	g.state = StateAuthenticated
	session := domain.Session{LoggedIn: true, User: g.user}
	g.mu.Unlock()
	g.persist(session)
	return true
}

// Logout clears the session state and its persisted copy.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.user = domain.User{}
	g.state = StateUnauthenticated
	g.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), sessionIOTimeout)
	defer cancel()
	if err := g.mirror.Delete(ctx, domain.BucketSession); err != nil {
		g.logger.Warn("clear session", zap.Error(err))
	}
}

func (g *Gate) persist(session domain.Session) {
	payload, err := json.Marshal(session)
	if err != nil {
		g.logger.Error("encode session", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sessionIOTimeout)
	defer cancel()
	if err := g.mirror.Write(ctx, domain.BucketSession, payload); err != nil {
		g.logger.Warn("persist session", zap.Error(err))
	}
}

// Session returns the current user and gate state.
func (g *Gate) Session() (domain.User, State) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user, g.state
}

// Authorize decides admission for a page restricted to the given roles. An
// empty role set admits any authenticated user.
func (g *Gate) Authorize(allowed ...domain.Role) Decision {
	g.mu.RLock()
	state, user := g.state, g.user
	g.mu.RUnlock()
	switch state {
	case StateUnknown:
		return Decision{Kind: DecisionPending}
	case StateUnauthenticated:
		return Decision{Kind: DecisionLogin, Redirect: RouteLogin}
	}
	if len(allowed) == 0 {
		return Decision{Kind: DecisionGrant}
	}
	for _, role := range allowed {
		if user.Role == role {
			return Decision{Kind: DecisionGrant}
		}
	}
	return Decision{Kind: DecisionRedirect, Redirect: DefaultRoute(user.Role)}
}
