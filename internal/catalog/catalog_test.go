package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

func testPlayers() []models.Player {
	common := "Vini Jr."
	return []models.Player{
		{
			ID: 1, FirstName: "Kylian", LastName: "Mbappé", OverallRating: 91,
			Position:    models.Position{ShortLabel: "ST"},
			Team:        models.Club{ID: 243, Label: "Real Madrid"},
			Nationality: models.Nationality{ID: 18, Label: "France"},
		},
		{
			ID: 2, FirstName: "Vinícius José", LastName: "de Oliveira Júnior", CommonName: &common, OverallRating: 90,
			Position:           models.Position{ShortLabel: "LW"},
			AlternatePositions: []models.AlternatePosition{{ShortLabel: "ST"}},
			Team:               models.Club{ID: 243, Label: "Real Madrid"},
			Nationality:        models.Nationality{ID: 54, Label: "Brazil"},
		},
		{
			ID: 3, FirstName: "Rodrigo", LastName: "Hernández", OverallRating: 91,
			Position:    models.Position{ShortLabel: "CDM"},
			Team:        models.Club{ID: 10, Label: "Manchester City"},
			Nationality: models.Nationality{ID: 45, Label: "Spain"},
		},
		{
			ID: 4, FirstName: "Alisson", LastName: "Becker", OverallRating: 89,
			Position:    models.Position{ShortLabel: "GK"},
			Team:        models.Club{ID: 9, Label: "Liverpool"},
			Nationality: models.Nationality{ID: 54, Label: "Brazil"},
		},
	}
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(testPlayers())
	require.NoError(t, err)
	return c
}

func ids(players []models.Player) []int {
	out := make([]int, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	players := testPlayers()
	players[1].ID = 1
	_, err := New(players)
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	c := newTestCatalog(t)

	p, ok := c.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, "Rodrigo Hernández", p.DisplayName())

	_, ok = c.Lookup(99)
	assert.False(t, ok)
}

func TestForkHasIndependentDraftedSet(t *testing.T) {
	base := newTestCatalog(t)
	a := base.Fork()
	b := base.Fork()

	a.MarkDrafted(1)
	assert.True(t, a.IsDrafted(1))
	assert.False(t, b.IsDrafted(1))
	assert.False(t, base.IsDrafted(1))
	assert.Equal(t, base.Len(), a.Len())

	a.UnmarkDrafted(1)
	assert.False(t, a.IsDrafted(1))
	assert.Empty(t, a.DraftedIDs())
}

func TestQuery(t *testing.T) {
	c := newTestCatalog(t)
	c.MarkDrafted(3)

	tests := []struct {
		name string
		q    Query
		want []int
	}{
		{name: "all available sorted by rating", q: Query{}, want: []int{1, 2, 4}},
		{name: "ALL position", q: Query{Position: "all"}, want: []int{1, 2, 4}},
		{name: "alternate position counts", q: Query{Position: "ST"}, want: []int{1, 2}},
		{name: "team", q: Query{TeamID: 243}, want: []int{1, 2}},
		{name: "nationality", q: Query{NationalityID: 54}, want: []int{2, 4}},
		{name: "search uses display name", q: Query{Search: "vini"}, want: []int{2}},
		{name: "drafted only", q: Query{Drafted: true}, want: []int{3}},
		{name: "no match", q: Query{Position: "CB"}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(c.Query(tt.q)))
		})
	}
}

func TestTeamsAndNationalitiesAreDeduplicated(t *testing.T) {
	c := newTestCatalog(t)

	teams := c.Teams()
	require.Len(t, teams, 3)
	assert.Equal(t, "Liverpool", teams[0].Label)
	assert.Equal(t, "Real Madrid", teams[2].Label)

	nations := c.Nationalities()
	require.Len(t, nations, 3)
	assert.Equal(t, "Brazil", nations[0].Label)
}

func TestParse(t *testing.T) {
	players, err := Parse(strings.NewReader(`[{"id": 7, "firstName": "A", "lastName": "B", "overallRating": 80}]`))
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, 80, players[0].OverallRating)

	_, err = Parse(strings.NewReader(`[{"firstName": "No", "lastName": "Id"}]`))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestSeedIsUsable(t *testing.T) {
	seed := Seed()
	require.NotEmpty(t, seed)

	c, err := New(seed)
	require.NoError(t, err)
	assert.Equal(t, len(seed), c.Len())
	assert.NotEmpty(t, c.Query(Query{Position: "GK"}))
}
