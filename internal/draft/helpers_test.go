package draft

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/formation"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

type fakeCatalog struct {
	players []models.Player
	drafted map[int]bool
}

func newFakeCatalog(n int) *fakeCatalog {
	c := &fakeCatalog{drafted: map[int]bool{}}
	for i := 1; i <= n; i++ {
		c.players = append(c.players, player(i))
	}
	return c
}

func (c *fakeCatalog) IsDrafted(id int) bool { return c.drafted[id] }
func (c *fakeCatalog) MarkDrafted(id int)    { c.drafted[id] = true }
func (c *fakeCatalog) UnmarkDrafted(id int)  { delete(c.drafted, id) }

func (c *fakeCatalog) Filter(pred func(models.Player) bool) []models.Player {
	var out []models.Player
	for _, p := range c.players {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func player(id int) models.Player {
	return models.Player{
		ID:            id,
		FirstName:     "Player",
		LastName:      fmt.Sprintf("%d", id),
		OverallRating: 60 + id%30,
		Position:      models.Position{ShortLabel: "CM"},
	}
}

func newBoard(t *testing.T, name string) *Board {
	t.Helper()
	b, err := NewBoard(formation.NewTable(), name)
	require.NoError(t, err)
	return b
}

func newEngine(t *testing.T, names []string, maxRounds int, opts ...Option) (*Engine, *fakeCatalog) {
	t.Helper()
	cat := newFakeCatalog(60)
	e := New(cat, formation.NewTable(), opts...)
	require.NoError(t, e.Initialize(names, maxRounds))
	return e, cat
}

// pickAndPlace picks id and places it in slotID, or on the bench when slotID is empty
func pickAndPlace(t *testing.T, e *Engine, id int, slotID string) {
	t.Helper()
	_, err := e.Pick(id)
	require.NoError(t, err)
	if slotID == "" {
		require.NoError(t, e.PlaceOnBench())
		return
	}
	require.NoError(t, e.PlaceOnField(slotID))
}

func occupantID(slots []models.FieldSlot, slotID string) int {
	for _, s := range slots {
		if s.ID == slotID && s.Occupant != nil {
			return s.Occupant.ID
		}
	}
	return 0
}

func benchIDs(bench []models.Player) []int {
	ids := make([]int, len(bench))
	for i, p := range bench {
		ids[i] = p.ID
	}
	return ids
}
