// Package session owns the authentication state of the client: token,
// current user, and the one-shot startup verification. All mutation goes
// through Start, Login and Logout; observers subscribe for changes.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripcat/internal/client/models"
	"github.com/dmitrijs2005/tripcat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tripcat/internal/dbx"
	"github.com/dmitrijs2005/tripcat/internal/logging"
)

// Status is the lifecycle state of the session.
type Status int

const (
	// StatusChecking holds only during the initial verification window.
	// It is never re-entered once Start has settled.
	StatusChecking Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "invalid"
	}
}

// Snapshot is an immutable view of the session at one point in time.
// Consumers must not branch on User while Status is StatusChecking.
type Snapshot struct {
	Status Status
	User   *models.User
	Token  string
}

// APIClient is the slice of the service boundary the session needs.
type APIClient interface {
	Me(ctx context.Context) (*models.User, error)
	SetToken(token string)
	ClearToken()
}

var ErrInvalidLogin = errors.New("login requires a user and a non-empty token")

const (
	tokenKey = "token"
	userKey  = "user"
)

// Store is the session store. Exclusively owned: state changes only through
// its methods, holding Status=Authenticated iff both token and user are set.
type Store struct {
	api  APIClient
	db   *sql.DB
	meta metadata.Repository
	log  logging.Logger
	now  func() time.Time

	mu      sync.RWMutex
	status  Status
	user    *models.User
	token   string
	started bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func New(api APIClient, db *sql.DB, meta metadata.Repository, log logging.Logger) *Store {
	return &Store{
		api:    api,
		db:     db,
		meta:   meta,
		log:    log.With("component", "session"),
		now:    time.Now,
		status: StatusChecking,
		subs:   make(map[int]func(Snapshot)),
	}
}

// Start runs the one-shot startup verification. With no persisted token the
// session settles to Anonymous immediately; otherwise the token is verified
// against /me. Every failure path degrades to Anonymous — Start never
// surfaces an error, only a settled state.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		s.log.Warn(ctx, "session start called twice, ignoring")
		return
	}
	s.started = true
	s.mu.Unlock()

	raw, err := s.meta.Get(ctx, tokenKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read persisted token", "err", err)
		s.settleAnonymous(ctx, false)
		return
	}

	token := string(raw)
	if token == "" {
		s.settleAnonymous(ctx, false)
		return
	}

	if expired, exp := tokenExpired(token, s.now()); expired {
		s.log.Info(ctx, "persisted token expired, discarding", "expired_at", exp)
		s.settleAnonymous(ctx, true)
		return
	}

	s.api.SetToken(token)
	user, err := s.api.Me(ctx)
	if err != nil {
		// Expired/invalid tokens and network errors all degrade the same
		// way; the only observable difference is the log line.
		s.log.Info(ctx, "token verification failed, starting anonymous", "err", err)
		s.api.ClearToken()
		s.settleAnonymous(ctx, true)
		return
	}

	s.mu.Lock()
	s.status = StatusAuthenticated
	s.user = user
	s.token = token
	s.mu.Unlock()

	s.persist(ctx, user, token)
	s.log.Info(ctx, "session restored", "user", user.Email, "role", user.Role.String())
	s.notify()
}

func (s *Store) settleAnonymous(ctx context.Context, wipePersisted bool) {
	s.mu.Lock()
	s.status = StatusAnonymous
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if wipePersisted {
		s.clearPersisted(ctx)
	}
	s.notify()
}

// Login installs an authenticated pair obtained from /login or /register and
// persists the token, replacing any prior value.
func (s *Store) Login(ctx context.Context, user *models.User, token string) error {
	if user == nil || token == "" {
		return ErrInvalidLogin
	}

	s.mu.Lock()
	s.status = StatusAuthenticated
	s.user = user
	s.token = token
	s.started = true
	s.mu.Unlock()

	s.api.SetToken(token)
	s.notify()

	s.persist(ctx, user, token)
	return nil
}

// Logout clears the session to Anonymous and erases the persisted token.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.status = StatusAnonymous
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	s.api.ClearToken()
	s.clearPersisted(ctx)
	s.notify()
}

// persist writes token and user snapshot in one transaction. Failures are
// logged, not surfaced: the in-memory session stays valid either way.
func (s *Store) persist(ctx context.Context, user *models.User, token string) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		s.log.Warn(ctx, "failed to encode user snapshot", "err", err)
		return
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, tokenKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, userKey, userJSON)
	})
	if err != nil {
		s.log.Warn(ctx, "failed to persist session", "err", err)
	}
}

func (s *Store) clearPersisted(ctx context.Context) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, tokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, userKey)
	})
	if err != nil {
		s.log.Warn(ctx, "failed to erase persisted session", "err", err)
	}
}

// Snapshot returns a point-in-time copy of the session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Status: s.status, Token: s.token}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == StatusAuthenticated
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == StatusAuthenticated && s.user != nil && s.user.IsAdmin()
}

// Subscribe registers fn to run after every settled state change. The
// returned function removes the subscription; notifications after removal
// are silently dropped.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	snap := s.Snapshot()

	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
