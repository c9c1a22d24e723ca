// Package likes mutates the liked/not-liked relation for the current user
// and keeps the local likes count convergent with remote truth under rapid
// repeated toggling: optimistic apply, exact rollback, one in-flight
// operation per vacation.
package likes

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/tripcat/internal/client/models"
	"github.com/dmitrijs2005/tripcat/internal/client/session"
	"github.com/dmitrijs2005/tripcat/internal/logging"
)

var (
	// ErrNotAuthenticated rejects a toggle from an anonymous or still-checking
	// session before any network call.
	ErrNotAuthenticated = errors.New("must be logged in to like vacations")
	// ErrAdminsCannotLike enforces the policy that administrators are
	// excluded from the liking relation.
	ErrAdminsCannotLike = errors.New("administrators cannot like vacations")
	// ErrToggleInFlight rejects a toggle while one is already running for the
	// same vacation. Rejected, not queued.
	ErrToggleInFlight = errors.New("a like operation for this vacation is already in flight")
	// ErrUnknownVacation rejects a toggle for an id the catalog does not hold.
	ErrUnknownVacation = errors.New("unknown vacation")
)

// APIClient is the slice of the service boundary the toggler needs.
type APIClient interface {
	AddLike(ctx context.Context, vacationID int) error
	RemoveLike(ctx context.Context, vacationID int) error
}

// Catalog is the membership/count storage the toggler mutates.
type Catalog interface {
	LikeState(id int) (liked bool, count int, ok bool)
	SetLikeState(id int, liked bool, count int)
}

// Sessions provides the snapshot for the policy precondition.
type Sessions interface {
	Snapshot() session.Snapshot
}

// Toggler serializes like operations per vacation id. Toggles on different
// vacations proceed concurrently.
type Toggler struct {
	api      APIClient
	catalog  Catalog
	sessions Sessions
	log      logging.Logger

	mu       sync.Mutex
	inFlight map[int]struct{}
}

func New(api APIClient, catalog Catalog, sessions Sessions, log logging.Logger) *Toggler {
	return &Toggler{
		api:      api,
		catalog:  catalog,
		sessions: sessions,
		log:      log.With("component", "likes"),
		inFlight: make(map[int]struct{}),
	}
}

// Toggle flips the membership bit for (current user, id) and adjusts the
// likes count optimistically, then confirms with the service. On a failed
// call both are restored to their exact pre-toggle values and the error is
// returned. Returns the membership state after settlement.
func (t *Toggler) Toggle(ctx context.Context, id int) (liked bool, err error) {
	snap := t.sessions.Snapshot()
	if snap.Status != session.StatusAuthenticated {
		return false, ErrNotAuthenticated
	}
	if snap.User != nil && snap.User.Role == models.RoleAdmin {
		return false, ErrAdminsCannotLike
	}

	if !t.acquire(id) {
		return t.catalogLiked(id), ErrToggleInFlight
	}
	defer t.release(id)

	prevLiked, prevCount, ok := t.catalog.LikeState(id)
	if !ok {
		return false, ErrUnknownVacation
	}

	target := !prevLiked
	optimisticCount := prevCount + 1
	if !target {
		optimisticCount = prevCount - 1
	}
	t.catalog.SetLikeState(id, target, optimisticCount)

	if target {
		err = t.api.AddLike(ctx, id)
	} else {
		err = t.api.RemoveLike(ctx, id)
	}
	if err != nil {
		// Restore the exact pre-toggle state so transient failures never
		// leave permanent drift.
		t.catalog.SetLikeState(id, prevLiked, prevCount)
		t.log.Warn(ctx, "like toggle failed, rolled back", "vacation_id", id, "err", err)
		return prevLiked, err
	}

	return target, nil
}

func (t *Toggler) catalogLiked(id int) bool {
	liked, _, _ := t.catalog.LikeState(id)
	return liked
}

func (t *Toggler) acquire(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.inFlight[id]; busy {
		return false
	}
	t.inFlight[id] = struct{}{}
	return true
}

func (t *Toggler) release(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, id)
}
