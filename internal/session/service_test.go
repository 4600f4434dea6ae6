package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/catalog"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/dal"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/draft"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/formation"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/pubsub"
)

const (
	mbappe  = 231747
	haaland = 239085
	rodri   = 231443
	salah   = 209331
)

func init() {
	logger.Init("error")
}

type recordedPicks struct {
	mu    sync.Mutex
	picks map[string][]models.PickRecord
}

func (r *recordedPicks) RecordPicks(_ context.Context, draftID string, picks []models.PickRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.picks == nil {
		r.picks = make(map[string][]models.PickRecord)
	}
	r.picks[draftID] = append(r.picks[draftID], picks...)
	return nil
}

type fixture struct {
	svc      *Service
	store    *dal.MemoryStore
	bus      *pubsub.PubSub
	events   chan pubsub.Event
	recorder *recordedPicks
	base     *catalog.Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base, err := catalog.New(catalog.Seed())
	require.NoError(t, err)

	f := &fixture{
		store:    dal.NewMemoryStore(),
		bus:      pubsub.New(),
		recorder: &recordedPicks{},
		base:     base,
	}
	f.events = f.bus.Subscribe()
	f.svc = NewService(base, formation.NewTable(), f.store,
		WithPublisher(f.bus),
		WithRecorder(f.recorder),
		WithDefaults(2, ""),
	)
	return f
}

func (f *fixture) drain() []pubsub.Event {
	var out []pubsub.Event
	for {
		select {
		case ev := <-f.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func eventTypes(events []pubsub.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Type)
	}
	return out
}

func TestCreateStoresAndAnnounces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, view, err := f.svc.Create(ctx, CreateRequest{Managers: []string{"Ana", "Ben"}})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, draft.StatusInProgress, view.Status)
	assert.Equal(t, 2, view.Turn.MaxRounds)
	assert.Equal(t, formation.Default, view.Formation)

	_, err = f.store.Load(ctx, id)
	require.NoError(t, err)

	events := f.drain()
	require.Len(t, events, 1)
	assert.Equal(t, pubsub.EventDraftCreated, events[0].Type)
	assert.Equal(t, id, events[0].DraftID)
}

func TestCreateRejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Create(ctx, CreateRequest{Managers: []string{"Solo"}})
	assert.ErrorIs(t, err, draft.ErrInvalidConfiguration)

	_, _, err = f.svc.Create(ctx, CreateRequest{Managers: []string{"Ana", "Ben"}, Formation: "9-0-1"})
	assert.ErrorIs(t, err, draft.ErrUnknownFormation)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTurnFlowPersistsPublishesAndRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, _, err := f.svc.Create(ctx, CreateRequest{Managers: []string{"Ana", "Ben"}})
	require.NoError(t, err)
	f.drain()

	_, err = f.svc.Pick(ctx, id, mbappe)
	require.NoError(t, err)
	_, err = f.svc.PlaceOnField(ctx, id, "st")
	require.NoError(t, err)
	_, err = f.svc.Pick(ctx, id, rodri)
	require.NoError(t, err)
	view, err := f.svc.PlaceOnBench(ctx, id)
	require.NoError(t, err)
	assert.True(t, view.CanFinishTurn)
	assert.Len(t, view.Bench, 1)

	view, err = f.svc.FinishTurn(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Turn.ManagerIndex)
	require.Len(t, view.Picks, 2)
	assert.Equal(t, mbappe, view.Picks[0].PlayerID)
	assert.True(t, view.Picks[1].Bench)

	assert.Equal(t, []string{
		pubsub.EventPick, pubsub.EventBoard, pubsub.EventPick, pubsub.EventBoard, pubsub.EventTurn,
	}, eventTypes(f.drain()))

	snap, err := f.store.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, snap.Picks, 2)
	assert.Equal(t, 1, snap.Turn.ManagerIndex)

	f.recorder.mu.Lock()
	assert.Len(t, f.recorder.picks[id], 2)
	f.recorder.mu.Unlock()
}

func TestDraftsHaveIndependentPools(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, _, err := f.svc.Create(ctx, CreateRequest{Managers: []string{"Ana", "Ben"}})
	require.NoError(t, err)
	b, _, err := f.svc.Create(ctx, CreateRequest{Managers: []string{"Cy", "Di"}})
	require.NoError(t, err)

	_, err = f.svc.Pick(ctx, a, haaland)
	require.NoError(t, err)
	_, err = f.svc.PlaceOnField(ctx, a, "st")
	require.NoError(t, err)
	_, err = f.svc.FinishTurn(ctx, a)
	require.NoError(t, err)

	drafted, err := f.svc.Players(ctx, a, catalog.Query{Drafted: true})
	require.NoError(t, err)
	require.Len(t, drafted, 1)
	assert.Equal(t, haaland, drafted[0].ID)

	drafted, err = f.svc.Players(ctx, b, catalog.Query{Drafted: true})
	require.NoError(t, err)
	assert.Empty(t, drafted)
	assert.False(t, f.base.IsDrafted(haaland))

	_, err = f.svc.Pick(ctx, b, haaland)
	assert.NoError(t, err)
}

func TestResumeFromStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, _, err := f.svc.Create(ctx, CreateRequest{Managers: []string{"Ana", "Ben"}})
	require.NoError(t, err)

	_, err = f.svc.Pick(ctx, id, salah)
	require.NoError(t, err)
	_, err = f.svc.PlaceOnField(ctx, id, "rw")
	require.NoError(t, err)
	_, err = f.svc.FinishTurn(ctx, id)
	require.NoError(t, err)

	// a second service over the same store, as after a restart
	restarted := NewService(f.base, formation.NewTable(), f.store)
	view, err := restarted.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, draft.StatusInProgress, view.Status)
	assert.Equal(t, 1, view.Turn.ManagerIndex)
	require.Len(t, view.Managers[0].Roster, 1)

	_, err = restarted.Pick(ctx, id, salah)
	assert.ErrorIs(t, err, draft.ErrAlreadyDrafted)
}

func TestGetUnknownDraft(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), "nope"), ErrDraftNotFound)
}

func TestFinishEarlyAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, _, err := f.svc.Create(ctx, CreateRequest{Managers: []string{"Ana", "Ben"}, MaxRounds: 5, Formation: "4-4-2"})
	require.NoError(t, err)

	_, err = f.svc.Pick(ctx, id, mbappe)
	require.NoError(t, err)
	_, err = f.svc.PlaceOnField(ctx, id, "gk")
	require.NoError(t, err)
	_, err = f.svc.Pick(ctx, id, rodri)
	require.NoError(t, err)
	_, err = f.svc.PlaceOnBench(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.FinishTurn(ctx, id)
	require.NoError(t, err)
	f.drain()

	view, err := f.svc.FinishEarly(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, draft.StatusComplete, view.Status)
	assert.Equal(t, []string{pubsub.EventDraftComplete}, eventTypes(f.drain()))

	_, err = f.svc.Pick(ctx, id, haaland)
	assert.ErrorIs(t, err, draft.ErrDraftAlreadyComplete)

	sum, err := f.svc.Summary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, draft.StatusComplete, sum.Status)
	require.Len(t, sum.Managers, 2)
	assert.Equal(t, "4-4-2", sum.Managers[0].Formation)
	require.Len(t, sum.Managers[0].Players, 2)
	assert.GreaterOrEqual(t, sum.Managers[0].Players[0].OverallRating, sum.Managers[0].Players[1].OverallRating)
	assert.Greater(t, sum.Managers[0].AverageRating, 0.0)
	assert.Empty(t, sum.Managers[1].Players)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, string(draft.StatusComplete), list[0].Status)
}

func TestUndoAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, _, err := f.svc.Create(ctx, CreateRequest{Managers: []string{"Ana", "Ben"}})
	require.NoError(t, err)

	_, err = f.svc.Undo(ctx, id)
	assert.ErrorIs(t, err, draft.ErrNothingToUndo)

	_, err = f.svc.Pick(ctx, id, mbappe)
	require.NoError(t, err)
	_, err = f.svc.PlaceOnField(ctx, id, "st")
	require.NoError(t, err)
	view, err := f.svc.Undo(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, view.CurrentPick)
	assert.Equal(t, mbappe, view.CurrentPick.ID)
	assert.False(t, view.CanFinishTurn)

	f.drain()
	require.NoError(t, f.svc.Delete(ctx, id))
	assert.Equal(t, []string{pubsub.EventDraftDeleted}, eventTypes(f.drain()))

	_, err = f.svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestFormationAndMoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, _, err := f.svc.Create(ctx, CreateRequest{Managers: []string{"Ana", "Ben"}})
	require.NoError(t, err)

	_, err = f.svc.Pick(ctx, id, mbappe)
	require.NoError(t, err)
	_, err = f.svc.PlaceOnField(ctx, id, "lw")
	require.NoError(t, err)
	_, err = f.svc.Pick(ctx, id, haaland)
	require.NoError(t, err)
	_, err = f.svc.PlaceOnField(ctx, id, "st")
	require.NoError(t, err)

	_, err = f.svc.SwapFieldSlots(ctx, id, "lw", "st")
	require.NoError(t, err)
	_, err = f.svc.MoveFieldToBench(ctx, id, haaland, "lw")
	require.NoError(t, err)
	_, err = f.svc.MoveBenchToField(ctx, id, haaland, "rw")
	require.NoError(t, err)

	view, err := f.svc.SetFormation(ctx, id, "4-4-2")
	require.NoError(t, err)
	assert.Equal(t, "4-4-2", view.Formation)

	_, err = f.svc.SetFormation(ctx, id, "1-1-1")
	assert.ErrorIs(t, err, draft.ErrUnknownFormation)
}

// gatedStore parks the next Save until release is closed
type gatedStore struct {
	*dal.MemoryStore
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Save(ctx context.Context, id string, snap *models.DraftSnapshot) error {
	if g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return g.MemoryStore.Save(ctx, id, snap)
}

func TestDeleteWaitsForInFlightCommit(t *testing.T) {
	base, err := catalog.New(catalog.Seed())
	require.NoError(t, err)
	store := &gatedStore{
		MemoryStore: dal.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	svc := NewService(base, formation.NewTable(), store, WithDefaults(2, ""))
	ctx := context.Background()

	id, _, err := svc.Create(ctx, CreateRequest{Managers: []string{"Ana", "Ben"}})
	require.NoError(t, err)
	_, err = svc.Pick(ctx, id, mbappe)
	require.NoError(t, err)
	_, err = svc.PlaceOnField(ctx, id, "st")
	require.NoError(t, err)

	store.armed.Store(true)
	finished := make(chan error, 1)
	go func() {
		_, err := svc.FinishTurn(ctx, id)
		finished <- err
	}()
	<-store.entered

	deleted := make(chan error, 1)
	go func() { deleted <- svc.Delete(ctx, id) }()

	select {
	case <-deleted:
		t.Fatal("delete returned while a commit was still saving")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	require.NoError(t, <-finished)
	require.NoError(t, <-deleted)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = svc.Pick(ctx, id, haaland)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, id), ErrDraftNotFound)
}
