package models

import (
	"strings"
	"time"
)

// PositionType groups positions (goalkeeper, defender, midfielder, attacker)
type PositionType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Position is a player's primary position
type Position struct {
	ID           string       `json:"id"`
	ShortLabel   string       `json:"shortLabel"`
	Label        string       `json:"label"`
	PositionType PositionType `json:"positionType"`
}

// AlternatePosition is a secondary position a player can cover
type AlternatePosition struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	ShortLabel string `json:"shortLabel"`
}

// Ability is a playstyle attached to a player
type Ability struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Type        struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	} `json:"type"`
}

// Club is the team a player belongs to in the catalog
type Club struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	ImageURL  string `json:"imageUrl,omitempty"`
	IsPopular bool   `json:"isPopular"`
}

// Nationality of a player
type Nationality struct {
	ID       int    `json:"id"`
	Label    string `json:"label"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Stat is a single attribute value with its change since the last ratings update
type Stat struct {
	Value int `json:"value"`
	Diff  int `json:"diff"`
}

// Player represents a catalog player
type Player struct {
	ID                 int                 `json:"id"`
	FirstName          string              `json:"firstName"`
	LastName           string              `json:"lastName"`
	CommonName         *string             `json:"commonName"`
	OverallRating      int                 `json:"overallRating"`
	SkillMoves         int                 `json:"skillMoves"`
	WeakFootAbility    int                 `json:"weakFootAbility"`
	PreferredFoot      string              `json:"preferredFoot"`
	Position           Position            `json:"position"`
	AlternatePositions []AlternatePosition `json:"alternatePositions"`
	PlayerAbilities    []Ability           `json:"playerAbilities"`
	Team               Club                `json:"team"`
	Nationality        Nationality         `json:"nationality"`
	Stats              map[string]Stat     `json:"stats"`
	ShieldURL          string              `json:"shieldUrl,omitempty"`
}

// DisplayName is the common name when set, otherwise "First Last"
func (p Player) DisplayName() string {
	if p.CommonName != nil && strings.TrimSpace(*p.CommonName) != "" {
		return *p.CommonName
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PlaysPosition reports whether the short label matches the primary or any alternate position
func (p Player) PlaysPosition(shortLabel string) bool {
	if strings.EqualFold(p.Position.ShortLabel, shortLabel) {
		return true
	}
	for _, alt := range p.AlternatePositions {
		if strings.EqualFold(alt.ShortLabel, shortLabel) {
			return true
		}
	}
	return false
}

// Manager is a draft participant and the roster they accumulate
type Manager struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Roster    []Player `json:"roster"`
	Formation string   `json:"formation"`
}

// HasPlayer reports whether the roster already holds the player id
func (m *Manager) HasPlayer(id int) bool {
	for _, p := range m.Roster {
		if p.ID == id {
			return true
		}
	}
	return false
}

// FieldSlot is one position on the pitch for the active formation
type FieldSlot struct {
	ID       string  `json:"id"`
	Tag      string  `json:"tag"`
	Occupant *Player `json:"occupant,omitempty"`
}

// PickRecord is one committed pick in draft order
type PickRecord struct {
	Overall      int    `json:"overall"`
	Round        int    `json:"round"`
	ManagerIndex int    `json:"managerIndex"`
	ManagerName  string `json:"managerName"`
	PlayerID     int    `json:"playerId"`
	PlayerName   string `json:"playerName"`
	SlotID       string `json:"slotId,omitempty"`
	Bench        bool   `json:"bench"`
}

// TurnSnapshot is the persisted form of the turn ledger
type TurnSnapshot struct {
	ManagerIndex int  `json:"managerIndex"`
	Round        int  `json:"round"`
	Reversed     bool `json:"reversed"`
	MaxRounds    int  `json:"maxRounds"`
}

// DraftSnapshot is everything needed to resume a draft at the start of a turn
type DraftSnapshot struct {
	Version  int          `json:"version"`
	Status   string       `json:"status"`
	Turn     TurnSnapshot `json:"turn"`
	Managers []Manager    `json:"managers"`
	Picks    []PickRecord `json:"picks"`
	SavedAt  time.Time    `json:"savedAt"`
}

// DraftSummary is the listing entry for a stored draft
type DraftSummary struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Round     int       `json:"round"`
	MaxRounds int       `json:"maxRounds"`
	Managers  []string  `json:"managers"`
	Picks     int       `json:"picks"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlayerPopularity is how often a player has been drafted across drafts
type PlayerPopularity struct {
	PlayerID    int     `json:"playerId"`
	PlayerName  string  `json:"playerName"`
	TimesPicked int     `json:"timesPicked"`
	AveragePick float64 `json:"averagePick"`
}
