package room

import (
	"github.com/mcdev12/bombparty/go/internal/game/events"
)

// Player is one participant of a room
type Player struct {
	ID     string
	Name   string
	ConnID string
	Lives  int
	Alive  bool

	// UsedWords holds every word this player got accepted, in order
	UsedWords []string
	bonus     map[rune]int
}

func newPlayer(id, connID, name string, lives int) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		ConnID: connID,
		Lives:  lives,
		Alive:  true,
		bonus:  make(map[rune]int),
	}
}

// loseLife takes one life and reports whether the player is now out
func (p *Player) loseLife() bool {
	if p.Lives > 0 {
		p.Lives--
	}
	if p.Lives == 0 {
		p.Alive = false
	}
	return !p.Alive
}

// applyBonus credits the distinct letters of an accepted word. When the
// alphabet is complete the progress resets and the player gains a life if
// below maxLives. The return value reports whether a life was gained.
func (p *Player) applyBonus(word string, alphabet map[rune]int, maxLives int) bool {
	seen := make(map[rune]bool)
	for _, r := range word {
		if seen[r] {
			continue
		}
		seen[r] = true
		if weight := alphabet[r]; weight > 0 && p.bonus[r] < weight {
			p.bonus[r]++
		}
	}

	complete := false
	for letter, weight := range alphabet {
		if weight <= 0 {
			continue
		}
		if p.bonus[letter] < weight {
			return false
		}
		complete = true
	}
	if !complete {
		return false
	}

	p.bonus = make(map[rune]int)
	if p.Lives < maxLives {
		p.Lives++
		return true
	}
	return false
}

// missingLetters lists the bonus letters the player still needs
func (p *Player) missingLetters(cfg Config) []string {
	var out []string
	for _, letter := range cfg.bonusLetters() {
		if p.bonus[letter] < cfg.BonusAlphabet[letter] {
			out = append(out, string(letter))
		}
	}
	return out
}

func (p *Player) dto(isCurrentTurn bool) events.PlayerDTO {
	bonus := make(map[string]int, len(p.bonus))
	for letter, n := range p.bonus {
		bonus[string(letter)] = n
	}
	return events.PlayerDTO{
		ID:               p.ID,
		Name:             p.Name,
		Lives:            p.Lives,
		IsAlive:          p.Alive,
		IsCurrentTurn:    isCurrentTurn,
		UsedWords:        append([]string{}, p.UsedWords...),
		BonusLettersUsed: bonus,
	}
}
