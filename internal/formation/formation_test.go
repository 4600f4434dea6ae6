package formation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTable(t *testing.T) {
	table := NewTable()

	names := table.Names()
	assert.Len(t, names, 31)
	assert.Contains(t, names, Default)

	for _, name := range names {
		tags, ok := table.SlotsFor(name)
		require.True(t, ok, name)
		assert.Len(t, tags, 11, name)
		assert.Equal(t, "GK", tags[0], name)
	}

	_, ok := table.SlotsFor("2-2-6")
	assert.False(t, ok)
}

func TestSlotsForReturnsCopy(t *testing.T) {
	table := NewTable()
	tags, _ := table.SlotsFor(Default)
	tags[0] = "ST"

	again, _ := table.SlotsFor(Default)
	assert.Equal(t, "GK", again[0])
}

func TestSlotIDs(t *testing.T) {
	ids := SlotIDs([]string{"GK", "LB", "CB", "CB", "RB", "LCM", "CM", "RCM", "LW", "ST", "RW"})
	assert.Equal(t, []string{"gk", "lb", "cb_0", "cb_1", "rb", "lcm", "cm", "rcm", "lw", "st", "rw"}, ids)

	ids = SlotIDs([]string{"GK", "CB", "CB", "CB", "ST", "ST"})
	assert.Equal(t, []string{"gk", "cb_0", "cb_1", "cb_2", "st_0", "st_1"}, ids)
}

func TestOrdinals(t *testing.T) {
	assert.Equal(t, []int{0, 0, 1, 2, 0, 1}, Ordinals([]string{"GK", "CB", "CB", "CB", "ST", "ST"}))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "CB", Label("cb_1"))
	assert.Equal(t, "ST", Label("st"))
	assert.Equal(t, "LWB", Label("lwb_10"))
}

func TestLayout(t *testing.T) {
	layout, ok := NewTable().Layout("4-4-2")
	require.True(t, ok)
	require.Len(t, layout.Slots, 11)

	assert.Equal(t, "gk", layout.Slots[0].ID)
	assert.Equal(t, Point{50, 90}, layout.Slots[0].Point)
	assert.Equal(t, "st_1", layout.Slots[10].ID)
	assert.Equal(t, "ST", layout.Slots[10].Label)
}

func TestCustomTable(t *testing.T) {
	table, err := NewCustomTable(map[string][]string{"mini": {"GK", "ST"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"mini"}, table.Names())

	_, err = NewCustomTable(map[string][]string{"empty": {}})
	assert.Error(t, err)
}

func TestCoordinatesFallback(t *testing.T) {
	assert.Equal(t, Point{50, 15}, Coordinates("st"))
	assert.Equal(t, Point{50, 50}, Coordinates("SW"))
}
