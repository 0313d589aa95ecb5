package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"gadamagado/api/internal/models"
	"gadamagado/api/internal/repository"
	"gadamagado/api/internal/session"
)

// Directory looks up principals. Implementations report a missing user
// with repository.ErrUserNotFound; any other error is an infrastructure
// fault.
type Directory interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// SessionStore is the subset of the session mechanism the resolver needs.
// A missing or expired session is session.ErrSessionNotFound.
type SessionStore interface {
	Resolve(ctx context.Context, id string) (string, error)
	Touch(ctx context.Context, id string) error
	Destroy(ctx context.Context, id string) error
}

// TokenVerifier checks a bearer token and returns the embedded user
// identifier. It must fail closed and must not consult the directory.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// VerifierFunc adapts a plain function to TokenVerifier.
type VerifierFunc func(token string) (string, error)

func (f VerifierFunc) Verify(token string) (string, error) { return f(token) }

// Credentials are the raw carriers extracted from a request. Either or
// both may be empty.
type Credentials struct {
	Bearer    string
	SessionID string
}

type strategy struct {
	name string
	run  func(ctx context.Context, creds Credentials) Result
	// terminalOnInvalid stops the fold when this channel saw a
	// credential that did not resolve, instead of trying the next one.
	terminalOnInvalid bool
}

// Resolver converts request credentials into an authenticated user. The
// channel order is fixed: bearer token first (pure CPU), session second
// (one store round-trip), so token-carrying clients never touch the
// session store.
type Resolver struct {
	users      Directory
	sessions   SessionStore
	tokens     TokenVerifier
	strategies []strategy
	log        zerolog.Logger
}

// Options tune resolution policy.
type Options struct {
	// StrictBearer rejects as soon as a present bearer token fails to
	// resolve. The default (false) falls through to the session cookie,
	// so a mobile client with a stale token still works when a session
	// happens to be live.
	StrictBearer bool
}

func NewResolver(users Directory, sessions SessionStore, tokens TokenVerifier, opts Options, log zerolog.Logger) *Resolver {
	r := &Resolver{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		log:      log,
	}
	r.strategies = []strategy{
		{name: "bearer", run: r.resolveBearer, terminalOnInvalid: opts.StrictBearer},
		{name: "session", run: r.resolveSession},
	}
	return r
}

// Resolve folds over the resolution strategies, stopping at the first
// resolved principal or infrastructure fault. When every channel comes up
// empty the result keeps the most specific status seen: Invalid beats
// NoCredential.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) Result {
	outcome := noCredential()
	for _, st := range r.strategies {
		res := st.run(ctx, creds)
		switch res.Status {
		case StatusResolved, StatusFault:
			return res
		case StatusInvalid:
			r.log.Debug().Str("channel", st.name).Err(res.Err).Msg("credential rejected")
			if st.terminalOnInvalid {
				return res
			}
			outcome = res
		}
	}
	return outcome
}

func (r *Resolver) resolveBearer(ctx context.Context, creds Credentials) Result {
	if creds.Bearer == "" {
		return noCredential()
	}

	userID, err := r.tokens.Verify(creds.Bearer)
	if err != nil {
		return invalid(fmt.Errorf("verify token: %w", err))
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return invalid(fmt.Errorf("token user %s not found", userID))
		}
		return fault(fmt.Errorf("directory lookup: %w", err))
	}
	if !user.IsActive {
		return invalid(fmt.Errorf("token user %s inactive", userID))
	}

	return resolved(user)
}

func (r *Resolver) resolveSession(ctx context.Context, creds Credentials) Result {
	if creds.SessionID == "" {
		return noCredential()
	}

	userID, err := r.sessions.Resolve(ctx, creds.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return invalid(errors.New("unknown or expired session"))
		}
		return fault(fmt.Errorf("session resolve: %w", err))
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// The session points at a principal that no longer
			// exists: tear it down instead of letting it linger
			// until TTL expiry.
			r.repairSession(ctx, creds.SessionID, userID)
			return invalid(fmt.Errorf("session user %s not found", userID))
		}
		return fault(fmt.Errorf("directory lookup: %w", err))
	}
	if !user.IsActive {
		return invalid(fmt.Errorf("session user %s inactive", userID))
	}

	if err := r.sessions.Touch(ctx, creds.SessionID); err != nil {
		r.log.Warn().Err(err).Msg("session touch failed")
	}

	return resolved(user)
}

// repairSession is best-effort hygiene; its failure never reaches the
// caller.
func (r *Resolver) repairSession(ctx context.Context, sessionID string, userID string) {
	if err := r.sessions.Destroy(ctx, sessionID); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("orphaned session destroy failed")
		return
	}
	r.log.Info().Str("user_id", userID).Msg("destroyed orphaned session")
}
