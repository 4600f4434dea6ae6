package models

// MainStats lists the detailed stat keys that make up each headline stat
var MainStats = []struct {
	Name string
	Keys []string
}{
	{"pace", []string{"acceleration", "sprintSpeed"}},
	{"shooting", []string{"positioning", "finishing", "shotPower", "longShots", "volleys", "penalties"}},
	{"passing", []string{"vision", "crossing", "freeKickAccuracy", "shortPassing", "longPassing", "curve"}},
	{"dribbling", []string{"agility", "balance", "reactions", "ballControl", "dribbling", "composure"}},
	{"defending", []string{"interceptions", "headingAccuracy", "defensiveAwareness", "standingTackle", "slidingTackle"}},
	{"physicality", []string{"jumping", "stamina", "strength", "aggression"}},
}

// HeadlineStats averages the detailed stats into the six headline values.
// Missing keys are ignored; a headline with no known keys is omitted.
func (p Player) HeadlineStats() map[string]int {
	out := make(map[string]int, len(MainStats))
	for _, group := range MainStats {
		sum, n := 0, 0
		for _, key := range group.Keys {
			if s, ok := p.Stats[key]; ok {
				sum += s.Value
				n++
			}
		}
		if n > 0 {
			out[group.Name] = (sum + n/2) / n
		}
	}
	return out
}

// RatingSeverity buckets a rating for display: success >= 85, warn >= 70, danger below
func RatingSeverity(rating int) string {
	switch {
	case rating >= 85:
		return "success"
	case rating >= 70:
		return "warn"
	default:
		return "danger"
	}
}

// PlayerProfile is the detailed view of a single player
type PlayerProfile struct {
	Player         Player         `json:"player"`
	DisplayName    string         `json:"displayName"`
	Headline       map[string]int `json:"headline"`
	RatingSeverity string         `json:"ratingSeverity"`
}

// NewPlayerProfile builds the profile view for p
func NewPlayerProfile(p Player) PlayerProfile {
	return PlayerProfile{
		Player:         p,
		DisplayName:    p.DisplayName(),
		Headline:       p.HeadlineStats(),
		RatingSeverity: RatingSeverity(p.OverallRating),
	}
}
