// Package catalog is the in-memory player pool drafts pick from.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

// Catalog holds the player pool and which players have been drafted. The
// player data is immutable once loaded and shared between forks; the drafted
// set belongs to one catalog.
type Catalog struct {
	players []models.Player
	byID    map[int]int

	mu      sync.RWMutex
	drafted map[int]bool
}

// New builds a catalog from players, rejecting duplicate ids
func New(players []models.Player) (*Catalog, error) {
	byID := make(map[int]int, len(players))
	for i, p := range players {
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %d", p.ID)
		}
		byID[p.ID] = i
	}
	return &Catalog{
		players: append([]models.Player(nil), players...),
		byID:    byID,
		drafted: make(map[int]bool),
	}, nil
}

// Fork returns a catalog over the same players with an empty drafted set
func (c *Catalog) Fork() *Catalog {
	return &Catalog{
		players: c.players,
		byID:    c.byID,
		drafted: make(map[int]bool),
	}
}

// Len is the number of players in the pool
func (c *Catalog) Len() int {
	return len(c.players)
}

// Lookup finds a player by id
func (c *Catalog) Lookup(id int) (models.Player, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Player{}, false
	}
	return c.players[i], true
}

// IsDrafted reports whether the player has been committed to a roster
func (c *Catalog) IsDrafted(id int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.drafted[id]
}

// MarkDrafted flags a player as taken
func (c *Catalog) MarkDrafted(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafted[id] = true
}

// UnmarkDrafted returns a player to the pool
func (c *Catalog) UnmarkDrafted(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drafted, id)
}

// DraftedIDs lists drafted player ids in ascending order
func (c *Catalog) DraftedIDs() []int {
	c.mu.RLock()
	ids := make([]int, 0, len(c.drafted))
	for id := range c.drafted {
		ids = append(ids, id)
	}
	c.mu.RUnlock()
	sort.Ints(ids)
	return ids
}

// Filter returns every player matching pred in catalog order
func (c *Catalog) Filter(pred func(models.Player) bool) []models.Player {
	out := []models.Player{}
	for _, p := range c.players {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// Query narrows the pool the way the draft room's player table does
type Query struct {
	// Position matches the primary or any alternate position; empty or "ALL" matches all
	Position      string
	TeamID        int
	NationalityID int
	// Drafted selects drafted players only; otherwise only available ones
	Drafted bool
	// Search matches a case-insensitive substring of the display name
	Search string
}

// Query filters the pool and orders it by overall rating, best first
func (c *Catalog) Query(q Query) []models.Player {
	position := strings.TrimSpace(q.Position)
	if strings.EqualFold(position, "ALL") {
		position = ""
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	c.mu.RLock()
	drafted := make(map[int]bool, len(c.drafted))
	for id := range c.drafted {
		drafted[id] = true
	}
	c.mu.RUnlock()

	out := c.Filter(func(p models.Player) bool {
		if position != "" && !p.PlaysPosition(position) {
			return false
		}
		if q.TeamID != 0 && p.Team.ID != q.TeamID {
			return false
		}
		if q.NationalityID != 0 && p.Nationality.ID != q.NationalityID {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(p.DisplayName()), search) {
			return false
		}
		return drafted[p.ID] == q.Drafted
	})

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OverallRating > out[j].OverallRating
	})
	return out
}

// Teams lists each club once, sorted by label
func (c *Catalog) Teams() []models.Club {
	seen := make(map[int]bool)
	teams := []models.Club{}
	for _, p := range c.players {
		if !seen[p.Team.ID] {
			seen[p.Team.ID] = true
			teams = append(teams, p.Team)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Label < teams[j].Label })
	return teams
}

// Nationalities lists each nationality once, sorted by label
func (c *Catalog) Nationalities() []models.Nationality {
	seen := make(map[int]bool)
	out := []models.Nationality{}
	for _, p := range c.players {
		if !seen[p.Nationality.ID] {
			seen[p.Nationality.ID] = true
			out = append(out, p.Nationality)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
