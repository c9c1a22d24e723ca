// Package catalog owns the in-memory cache of vacations and the country
// lookup table. The cache is built from two concurrent collaborator fetches
// and kept consistent with successful mutations instead of re-fetching.
package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripcat/internal/client/models"
	"github.com/dmitrijs2005/tripcat/internal/client/session"
	"github.com/dmitrijs2005/tripcat/internal/logging"
	"golang.org/x/sync/errgroup"
)

// UnknownCountryName is what CountryName resolves for ids missing from the
// reference data. Resolved at read time, never stored.
const UnknownCountryName = "Unknown"

// APIClient is the slice of the service boundary the catalog needs.
type APIClient interface {
	ListVacations(ctx context.Context) ([]models.Vacation, error)
	ListCountries(ctx context.Context) ([]models.Country, error)
	ListUserLikes(ctx context.Context) ([]int, error)
}

// Sessions provides the session snapshot the like-ids fetch depends on.
type Sessions interface {
	Snapshot() session.Snapshot
}

// Store is the catalog store. Exclusively owned: all mutation goes through
// Load, the Apply* methods and SetLikeState.
type Store struct {
	api      APIClient
	sessions Sessions
	log      logging.Logger

	mu           sync.RWMutex
	vacations    []models.Vacation
	countries    []models.Country
	countryIndex map[int]string
	likes        map[int]struct{}
	loaded       bool

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

func New(api APIClient, sessions Sessions, log logging.Logger) *Store {
	return &Store{
		api:      api,
		sessions: sessions,
		log:      log.With("component", "catalog"),
		likes:    make(map[int]struct{}),
		subs:     make(map[int]func()),
	}
}

// Load fetches vacations and countries concurrently and, for an
// authenticated non-admin session, the current user's liked ids. The liked
// fetch is best-effort: its failure logs a warning and yields an empty set
// instead of failing the load. Visible state updates only after both primary
// fetches are in, so observers never see vacations without their countries.
func (s *Store) Load(ctx context.Context) error {
	var (
		vacations []models.Vacation
		countries []models.Country
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vacations, err = s.api.ListVacations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		countries, err = s.api.ListCountries(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	likes := make(map[int]struct{})
	snap := s.sessions.Snapshot()
	if snap.Status == session.StatusAuthenticated && snap.User != nil && !snap.User.IsAdmin() {
		ids, err := s.api.ListUserLikes(ctx)
		if err != nil {
			s.log.Warn(ctx, "failed to fetch liked vacations, proceeding without", "err", err)
		}
		for _, id := range ids {
			likes[id] = struct{}{}
		}
	}

	index := make(map[int]string, len(countries))
	for _, c := range countries {
		index[c.ID] = c.Name
	}

	s.mu.Lock()
	s.vacations = vacations
	s.countries = countries
	s.countryIndex = index
	s.likes = likes
	s.loaded = true
	s.mu.Unlock()

	s.log.Info(ctx, "catalog loaded", "vacations", len(vacations), "countries", len(countries), "likes", len(likes))
	s.notify()
	return nil
}

// Loaded reports whether at least one Load has completed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Vacations returns the display ordering: ascending by start date, ties kept
// in the source response's order. Derived on read; stored order never changes.
func (s *Store) Vacations() []models.Vacation {
	s.mu.RLock()
	out := make([]models.Vacation, len(s.vacations))
	copy(out, s.vacations)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// Vacation returns the cached record for id.
func (s *Store) Vacation(id int) (models.Vacation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vacations {
		if v.ID == id {
			return v, true
		}
	}
	return models.Vacation{}, false
}

// Countries returns the reference data in response order.
func (s *Store) Countries() []models.Country {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Country, len(s.countries))
	copy(out, s.countries)
	return out
}

// CountryName resolves a country id for display.
func (s *Store) CountryName(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name, ok := s.countryIndex[id]; ok {
		return name
	}
	return UnknownCountryName
}

// KnownCountry reports whether id exists in the loaded reference data.
func (s *Store) KnownCountry(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.countryIndex[id]
	return ok
}

// Liked reports the current user's membership for a vacation.
func (s *Store) Liked(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.likes[id]
	return ok
}

// LikeState returns the membership bit and likes count for a vacation, for
// callers that need both read atomically (the like toggler).
func (s *Store) LikeState(id int) (liked bool, count int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vacations {
		if v.ID == id {
			_, liked = s.likes[id]
			return liked, v.LikesCount, true
		}
	}
	return false, 0, false
}

// SetLikeState installs an exact membership bit and likes count for a
// vacation, used for both the optimistic apply and the rollback. The count
// is floored at zero. Unknown ids are ignored.
func (s *Store) SetLikeState(id int, liked bool, count int) {
	if count < 0 {
		count = 0
	}

	s.mu.Lock()
	changed := false
	for i := range s.vacations {
		if s.vacations[i].ID == id {
			s.vacations[i].LikesCount = count
			if liked {
				s.likes[id] = struct{}{}
			} else {
				delete(s.likes, id)
			}
			changed = true
			break
		}
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// ApplyCreate inserts a vacation confirmed by a successful create round trip.
func (s *Store) ApplyCreate(v models.Vacation) {
	s.mu.Lock()
	replaced := false
	for i := range s.vacations {
		if s.vacations[i].ID == v.ID {
			s.vacations[i] = v
			replaced = true
			break
		}
	}
	if !replaced {
		s.vacations = append(s.vacations, v)
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyUpdate replaces the cached record by id after a successful update.
func (s *Store) ApplyUpdate(v models.Vacation) {
	s.ApplyCreate(v)
}

// ApplyDelete removes a vacation by id after a successful delete. Idempotent:
// an absent id is a no-op. Membership for the id is dropped with it.
func (s *Store) ApplyDelete(id int) {
	s.mu.Lock()
	removed := false
	for i := range s.vacations {
		if s.vacations[i].ID == id {
			s.vacations = append(s.vacations[:i], s.vacations[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		delete(s.likes, id)
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
}

// Summary reports dashboard counts: total offers and offers starting after now.
func (s *Store) Summary(now time.Time) (total, upcoming int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total = len(s.vacations)
	for _, v := range s.vacations {
		if v.Start.After(now) {
			upcoming++
		}
	}
	return total, upcoming
}

// Subscribe registers fn to run after every visible state change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
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
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
