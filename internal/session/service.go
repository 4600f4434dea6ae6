// Package session keeps live draft engines addressable by id, persists their
// snapshots and relays their events to subscribers and analytics.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/catalog"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/dal"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/draft"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/formation"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/pubsub"
)

// ErrDraftNotFound is returned for ids that are neither live nor stored
var ErrDraftNotFound = errors.New("draft not found")

// Publisher receives draft events
type Publisher interface {
	Publish(pubsub.Event)
}

// PickRecorder receives committed picks for analytics
type PickRecorder interface {
	RecordPicks(ctx context.Context, draftID string, picks []models.PickRecord) error
}

// Option configures a Service
type Option func(*Service)

// WithPublisher sends draft events to p
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithRecorder sends committed picks to r
func WithRecorder(r PickRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithDefaults sets the rounds and formation used when a create request leaves them out
func WithDefaults(maxRounds int, formationName string) Option {
	return func(s *Service) {
		if maxRounds > 0 {
			s.maxRounds = maxRounds
		}
		if formationName != "" {
			s.formation = formationName
		}
	}
}

type entry struct {
	mu      sync.Mutex
	id      string
	engine  *draft.Engine
	catalog *catalog.Catalog
	deleted bool // set under mu; later commands see ErrDraftNotFound
}

// Service owns every live draft
type Service struct {
	catalog    *catalog.Catalog
	formations *formation.Table
	store      dal.SnapshotStore
	events     Publisher
	recorder   PickRecorder
	maxRounds  int
	formation  string
	log        *slog.Logger

	mu     sync.Mutex
	drafts map[string]*entry
}

// NewService creates a service drafting from cat and persisting to store
func NewService(cat *catalog.Catalog, formations *formation.Table, store dal.SnapshotStore, opts ...Option) *Service {
	s := &Service{
		catalog:    cat,
		formations: formations,
		store:      store,
		maxRounds:  draft.DefaultMaxRounds,
		formation:  formation.Default,
		log:        logger.With("component", "session"),
		drafts:     make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest describes a new draft
type CreateRequest struct {
	Managers  []string
	MaxRounds int
	Formation string
}

// Create starts a draft on its own catalog fork and stores its first snapshot
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, draft.View, error) {
	rounds := req.MaxRounds
	if rounds == 0 {
		rounds = s.maxRounds
	}
	name := req.Formation
	if name == "" {
		name = s.formation
	}
	if _, ok := s.formations.SlotsFor(name); !ok {
		return "", draft.View{}, fmt.Errorf("%w: %q", draft.ErrUnknownFormation, name)
	}

	id := uuid.NewString()
	e := &entry{id: id, catalog: s.catalog.Fork()}
	e.engine = draft.New(e.catalog, s.formations, s.engineOptions(id, name)...)
	if err := e.engine.Initialize(req.Managers, rounds); err != nil {
		return "", draft.View{}, err
	}

	s.mu.Lock()
	s.drafts[id] = e
	s.mu.Unlock()

	s.persist(ctx, e)
	s.publish(id, pubsub.EventDraftCreated, map[string]interface{}{
		"managers":  len(req.Managers),
		"maxRounds": rounds,
	})
	s.log.Info("Draft created", "draft_id", id, "managers", len(req.Managers), "max_rounds", rounds)
	return id, e.engine.View(), nil
}

func (s *Service) engineOptions(id, formationName string) []draft.Option {
	return []draft.Option{
		draft.WithDefaultFormation(formationName),
		draft.WithLogger(s.log.With("draft_id", id)),
		draft.WithObserver(func(ev draft.Event) { s.relay(id, ev) }),
	}
}

// lookup returns the live entry, restoring it from the store when needed
func (s *Service) lookup(ctx context.Context, id string) (*entry, error) {
	s.mu.Lock()
	e, ok := s.drafts[id]
	s.mu.Unlock()
	if ok {
		return e, nil
	}

	snap, err := s.store.Load(ctx, id)
	if errors.Is(err, dal.ErrNotFound) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}

	restored := &entry{id: id, catalog: s.catalog.Fork()}
	restored.engine, err = draft.Restore(*snap, restored.catalog, s.formations, s.engineOptions(id, s.formation)...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.drafts[id]; ok {
		return existing, nil
	}
	s.drafts[id] = restored
	s.log.Info("Draft resumed from store", "draft_id", id, "status", restored.engine.Status())
	return restored, nil
}

// Get returns the draft view, resuming a stored draft
func (s *Service) Get(ctx context.Context, id string) (draft.View, error) {
	var v draft.View
	err := s.with(ctx, id, func(e *entry) error {
		v = e.engine.View()
		return nil
	})
	return v, err
}

// List returns every stored draft, most recent first
func (s *Service) List(ctx context.Context) ([]models.DraftSummary, error) {
	return s.store.List(ctx)
}

// Delete forgets a draft in memory and in the store. A live draft is locked
// first so a commit already in progress finishes saving before the row goes.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	e, live := s.drafts[id]
	s.mu.Unlock()

	if live {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.deleted {
			return ErrDraftNotFound
		}
		e.deleted = true
		s.mu.Lock()
		if s.drafts[id] == e {
			delete(s.drafts, id)
		}
		s.mu.Unlock()
	}

	err := s.store.Delete(ctx, id)
	if errors.Is(err, dal.ErrNotFound) {
		if !live {
			return ErrDraftNotFound
		}
		err = nil
	}
	if err != nil {
		return err
	}

	s.publish(id, pubsub.EventDraftDeleted, nil)
	s.log.Info("Draft deleted", "draft_id", id)
	return nil
}

// Players queries the pool as seen by this draft
func (s *Service) Players(ctx context.Context, id string, q catalog.Query) ([]models.Player, error) {
	var out []models.Player
	err := s.with(ctx, id, func(e *entry) error {
		out = e.catalog.Query(q)
		return nil
	})
	return out, err
}

// Pick selects a player for the manager on the clock
func (s *Service) Pick(ctx context.Context, id string, playerID int) (draft.View, error) {
	return s.command(ctx, id, func(e *draft.Engine) error {
		_, err := e.Pick(playerID)
		return err
	})
}

// PlaceOnField puts the selected player in a slot
func (s *Service) PlaceOnField(ctx context.Context, id, slotID string) (draft.View, error) {
	return s.command(ctx, id, func(e *draft.Engine) error { return e.PlaceOnField(slotID) })
}

// PlaceOnBench puts the selected player on the bench
func (s *Service) PlaceOnBench(ctx context.Context, id string) (draft.View, error) {
	return s.command(ctx, id, func(e *draft.Engine) error { return e.PlaceOnBench() })
}

// SwapFieldSlots exchanges two slots' occupants
func (s *Service) SwapFieldSlots(ctx context.Context, id, fromSlot, toSlot string) (draft.View, error) {
	return s.command(ctx, id, func(e *draft.Engine) error { return e.SwapFieldSlots(fromSlot, toSlot) })
}

// MoveBenchToField promotes a bench player
func (s *Service) MoveBenchToField(ctx context.Context, id string, playerID int, slotID string) (draft.View, error) {
	return s.command(ctx, id, func(e *draft.Engine) error { return e.MoveBenchToField(playerID, slotID) })
}

// MoveFieldToBench demotes a field player
func (s *Service) MoveFieldToBench(ctx context.Context, id string, playerID int, slotID string) (draft.View, error) {
	return s.command(ctx, id, func(e *draft.Engine) error { return e.MoveFieldToBench(playerID, slotID) })
}

// SetFormation changes the current manager's formation
func (s *Service) SetFormation(ctx context.Context, id, name string) (draft.View, error) {
	return s.command(ctx, id, func(e *draft.Engine) error { return e.SetFormation(name) })
}

// Undo reverts the last board action of this turn
func (s *Service) Undo(ctx context.Context, id string) (draft.View, error) {
	return s.command(ctx, id, func(e *draft.Engine) error {
		_, err := e.Undo()
		return err
	})
}

// FinishTurn commits the board, saves the draft and records the picks
func (s *Service) FinishTurn(ctx context.Context, id string) (draft.View, error) {
	var (
		v     draft.View
		picks []models.PickRecord
	)
	err := s.with(ctx, id, func(e *entry) error {
		var err error
		picks, err = e.engine.FinishTurn()
		if err != nil {
			return err
		}
		s.persist(ctx, e)
		v = e.engine.View()
		return nil
	})
	if err != nil {
		return draft.View{}, err
	}

	if s.recorder != nil && len(picks) > 0 {
		if err := s.recorder.RecordPicks(ctx, id, picks); err != nil {
			s.log.Error("Failed to record picks", "draft_id", id, "error", err)
		}
	}
	return v, nil
}

// FinishEarly ends the draft now and saves it
func (s *Service) FinishEarly(ctx context.Context, id string) (draft.View, error) {
	var v draft.View
	err := s.with(ctx, id, func(e *entry) error {
		if err := e.engine.FinishDraftEarly(); err != nil {
			return err
		}
		s.persist(ctx, e)
		v = e.engine.View()
		return nil
	})
	return v, err
}

// Summary is the end-of-draft picture of every squad
type Summary struct {
	ID       string              `json:"id"`
	Status   draft.Status        `json:"status"`
	Rounds   int                 `json:"rounds"`
	Managers []ManagerSummary    `json:"managers"`
	Picks    []models.PickRecord `json:"picks"`
}

// ManagerSummary is one manager's squad ordered by rating
type ManagerSummary struct {
	Name          string          `json:"name"`
	Formation     string          `json:"formation"`
	Players       []models.Player `json:"players"`
	AverageRating float64         `json:"averageRating"`
}

// Summary returns the squads built so far
func (s *Service) Summary(ctx context.Context, id string) (Summary, error) {
	var out Summary
	err := s.with(ctx, id, func(e *entry) error {
		out = Summary{
			ID:     id,
			Status: e.engine.Status(),
			Rounds: e.engine.Turn().MaxRounds,
			Picks:  e.engine.Picks(),
		}
		for _, m := range e.engine.Managers() {
			players := append([]models.Player{}, m.Roster...)
			sort.SliceStable(players, func(i, j int) bool {
				return players[i].OverallRating > players[j].OverallRating
			})
			ms := ManagerSummary{Name: m.Name, Formation: m.Formation, Players: players}
			if len(players) > 0 {
				total := 0
				for _, p := range players {
					total += p.OverallRating
				}
				ms.AverageRating = float64(total) / float64(len(players))
			}
			out.Managers = append(out.Managers, ms)
		}
		return nil
	})
	return out, err
}

func (s *Service) with(ctx context.Context, id string, fn func(*entry) error) error {
	e, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return ErrDraftNotFound
	}
	return fn(e)
}

func (s *Service) command(ctx context.Context, id string, fn func(*draft.Engine) error) (draft.View, error) {
	var v draft.View
	err := s.with(ctx, id, func(e *entry) error {
		if err := fn(e.engine); err != nil {
			return err
		}
		v = e.engine.View()
		return nil
	})
	return v, err
}

// persist saves the committed state; a failed save is logged and retried on the next commit
func (s *Service) persist(ctx context.Context, e *entry) {
	snap, err := e.engine.Snapshot()
	if err != nil {
		s.log.Error("Failed to snapshot draft", "draft_id", e.id, "error", err)
		return
	}
	if err := s.store.Save(ctx, e.id, &snap); err != nil {
		s.log.Error("Failed to save draft", "draft_id", e.id, "error", err)
	}
}
