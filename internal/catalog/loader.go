package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

//go:embed seed_players.json
var seedPlayers []byte

// Parse decodes a JSON array of players in the ratings-site shape
func Parse(r io.Reader) ([]models.Player, error) {
	var players []models.Player
	if err := json.NewDecoder(r).Decode(&players); err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}
	for i, p := range players {
		if p.ID == 0 {
			return nil, fmt.Errorf("player at index %d has no id", i)
		}
	}
	return players, nil
}

// LoadFile reads players from a JSON file
func LoadFile(path string) ([]models.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open players file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Seed returns the built-in player list used when no file is configured
func Seed() []models.Player {
	var players []models.Player
	if err := json.Unmarshal(seedPlayers, &players); err != nil {
		panic(fmt.Sprintf("catalog: embedded seed is invalid: %v", err))
	}
	return players
}
