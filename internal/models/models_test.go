package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		player Player
		want   string
	}{
		{"common name wins", Player{FirstName: "Vinícius", LastName: "José de Oliveira Júnior", CommonName: strPtr("Vini Jr.")}, "Vini Jr."},
		{"nil common name", Player{FirstName: "Kylian", LastName: "Mbappé"}, "Kylian Mbappé"},
		{"blank common name", Player{FirstName: "Erling", LastName: "Haaland", CommonName: strPtr("  ")}, "Erling Haaland"},
		{"mononym", Player{LastName: "Rodri"}, "Rodri"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.player.DisplayName())
		})
	}
}

func TestPlaysPosition(t *testing.T) {
	p := Player{
		Position:           Position{ShortLabel: "CM"},
		AlternatePositions: []AlternatePosition{{ShortLabel: "CDM"}, {ShortLabel: "CAM"}},
	}
	assert.True(t, p.PlaysPosition("CM"))
	assert.True(t, p.PlaysPosition("cdm"))
	assert.True(t, p.PlaysPosition("CAM"))
	assert.False(t, p.PlaysPosition("ST"))
}

func TestHeadlineStats(t *testing.T) {
	p := Player{Stats: map[string]Stat{
		"acceleration": {Value: 90},
		"sprintSpeed":  {Value: 95},
		"strength":     {Value: 80},
	}}
	got := p.HeadlineStats()

	assert.Equal(t, 93, got["pace"])
	assert.Equal(t, 80, got["physicality"])
	_, ok := got["shooting"]
	assert.False(t, ok)
}

func TestRatingSeverity(t *testing.T) {
	assert.Equal(t, "success", RatingSeverity(91))
	assert.Equal(t, "success", RatingSeverity(85))
	assert.Equal(t, "warn", RatingSeverity(84))
	assert.Equal(t, "warn", RatingSeverity(70))
	assert.Equal(t, "danger", RatingSeverity(69))
}

func TestManagerHasPlayer(t *testing.T) {
	m := Manager{Roster: []Player{{ID: 7}, {ID: 9}}}
	assert.True(t, m.HasPlayer(9))
	assert.False(t, m.HasPlayer(10))
}
