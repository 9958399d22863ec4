package room

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mcdev12/bombparty/go/internal/game/dictionary"
	"github.com/mcdev12/bombparty/go/internal/game/events"
)

// Difficulty selects how common the drawn syllables are
type Difficulty string

const (
	Beginner     Difficulty = "BEGINNER"
	Intermediate Difficulty = "INTERMEDIATE"
	Advanced     Difficulty = "ADVANCED"
	Custom       Difficulty = "CUSTOM"
)

// minimum number of dictionary words containing a syllable, per difficulty
var difficultyMinWords = map[Difficulty]int{
	Beginner:     500,
	Intermediate: 300,
	Advanced:     100,
}

const (
	defaultCustomMinWords = 100
	defaultTurnSpread     = 10

	MinPlayers      = 2
	MaxPlayerLimit  = 16
	maxLivesLimit   = 10
	maxLifespan     = 10
	maxTurnSeconds  = 120
	maxMinTurn      = 60
	maxLetterWeight = 5
	maxNameLength   = 20
)

// Config holds the rules of one room
type Config struct {
	Language            dictionary.Language
	Difficulty          Difficulty
	CustomMinWords      int
	CustomMaxWords      int
	MinTurnDuration     int // seconds
	MaxTurnDuration     int // seconds, 0 means MinTurnDuration + 10
	MaxSyllableLifespan int // turns
	InitialLives        int
	MaxLives            int
	MaxPlayers          int
	BonusAlphabet       map[rune]int
}

// DefaultConfig returns the rules used when a client sends no config
func DefaultConfig() Config {
	return Config{
		Language:            dictionary.Spanish,
		Difficulty:          Beginner,
		MinTurnDuration:     5,
		MaxSyllableLifespan: 2,
		InitialLives:        2,
		MaxLives:            3,
		MaxPlayers:          16,
		BonusAlphabet:       DefaultBonusAlphabet(),
	}
}

// DefaultBonusAlphabet weighs every letter a-z at 1 except x and z
func DefaultBonusAlphabet() map[rune]int {
	alphabet := make(map[rune]int, 26)
	for r := 'a'; r <= 'z'; r++ {
		alphabet[r] = 1
	}
	alphabet['x'] = 0
	alphabet['z'] = 0
	return alphabet
}

// ConfigFromSettings overlays the fields present in dto on base and
// validates the result. A nil dto yields base.
func ConfigFromSettings(dto *events.RoomSettings, base Config) (Config, error) {
	cfg := base
	cfg.BonusAlphabet = copyAlphabet(base.BonusAlphabet)
	if dto == nil {
		return cfg, cfg.Validate()
	}

	if dto.Language != "" {
		lang, ok := dictionary.ParseLanguage(dto.Language)
		if !ok {
			return Config{}, fmt.Errorf("%w: unknown language %q", ErrConfigInvalid, dto.Language)
		}
		cfg.Language = lang
	}
	if dto.SyllableDifficulty != "" {
		d := Difficulty(strings.ToUpper(strings.TrimSpace(dto.SyllableDifficulty)))
		if _, ok := difficultyMinWords[d]; !ok && d != Custom {
			return Config{}, fmt.Errorf("%w: unknown difficulty %q", ErrConfigInvalid, dto.SyllableDifficulty)
		}
		cfg.Difficulty = d
	}

	overlay(&cfg.CustomMinWords, dto.CustomMinWords)
	overlay(&cfg.CustomMaxWords, dto.CustomMaxWords)
	overlay(&cfg.MinTurnDuration, dto.MinTurnDuration)
	overlay(&cfg.MaxTurnDuration, dto.MaxTurnDuration)
	overlay(&cfg.MaxSyllableLifespan, dto.MaxSyllableLifespan)
	overlay(&cfg.InitialLives, dto.InitialLives)
	overlay(&cfg.MaxLives, dto.MaxLives)
	overlay(&cfg.MaxPlayers, dto.MaxPlayers)

	if len(dto.BonusAlphabet) > 0 {
		alphabet := make(map[rune]int, len(dto.BonusAlphabet))
		for key, weight := range dto.BonusAlphabet {
			letter := []rune(strings.ToLower(key))
			if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
				return Config{}, fmt.Errorf("%w: bonus letter %q", ErrConfigInvalid, key)
			}
			alphabet[letter[0]] = weight
		}
		cfg.BonusAlphabet = alphabet
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlay(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks every field against its allowed bounds
func (c Config) Validate() error {
	check := func(ok bool, format string, args ...any) error {
		if ok {
			return nil
		}
		return fmt.Errorf("%w: "+format, append([]any{ErrConfigInvalid}, args...)...)
	}

	if _, ok := dictionary.ParseLanguage(string(c.Language)); !ok {
		return check(false, "unknown language %q", c.Language)
	}
	if _, ok := difficultyMinWords[c.Difficulty]; !ok && c.Difficulty != Custom {
		return check(false, "unknown difficulty %q", c.Difficulty)
	}

	checks := []error{
		check(c.MaxPlayers >= MinPlayers && c.MaxPlayers <= MaxPlayerLimit,
			"maxPlayers must be between %d and %d", MinPlayers, MaxPlayerLimit),
		check(c.MaxLives >= 1 && c.MaxLives <= maxLivesLimit,
			"maxLives must be between 1 and %d", maxLivesLimit),
		check(c.InitialLives >= 1 && c.InitialLives <= c.MaxLives,
			"initialLives must be between 1 and maxLives"),
		check(c.MinTurnDuration >= 1 && c.MinTurnDuration <= maxMinTurn,
			"minTurnDuration must be between 1 and %d", maxMinTurn),
		check(c.MaxTurnDuration == 0 || (c.MaxTurnDuration >= c.MinTurnDuration && c.MaxTurnDuration <= maxTurnSeconds),
			"maxTurnDuration must be between minTurnDuration and %d", maxTurnSeconds),
		check(c.MaxSyllableLifespan >= 1 && c.MaxSyllableLifespan <= maxLifespan,
			"maxSyllableLifespan must be between 1 and %d", maxLifespan),
		check(c.CustomMinWords >= 0 && c.CustomMaxWords >= 0,
			"custom word bounds must not be negative"),
		check(c.CustomMaxWords == 0 || c.CustomMaxWords >= c.customMin(),
			"customMaxWords must not be below customMinWords"),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	for letter, weight := range c.BonusAlphabet {
		if letter < 'a' || letter > 'z' || weight < 0 || weight > maxLetterWeight {
			return check(false, "bonus letter %q weight %d", letter, weight)
		}
	}
	return nil
}

func (c Config) customMin() int {
	if c.CustomMinWords > 0 {
		return c.CustomMinWords
	}
	return defaultCustomMinWords
}

// Band is the syllable frequency band of the configured difficulty
func (c Config) Band() dictionary.Band {
	if c.Difficulty == Custom {
		return dictionary.Band{Min: c.customMin(), Max: c.CustomMaxWords}
	}
	return dictionary.Band{Min: difficultyMinWords[c.Difficulty]}
}

// TurnBounds returns the inclusive range bomb durations are drawn from
func (c Config) TurnBounds() (time.Duration, time.Duration) {
	lo := time.Duration(c.MinTurnDuration) * time.Second
	hi := time.Duration(c.MaxTurnDuration) * time.Second
	if c.MaxTurnDuration == 0 {
		hi = lo + defaultTurnSpread*time.Second
	}
	return lo, hi
}

// DTO converts the config to its wire shape
func (c Config) DTO() events.ConfigDTO {
	alphabet := make(map[string]int, len(c.BonusAlphabet))
	for letter, weight := range c.BonusAlphabet {
		alphabet[string(letter)] = weight
	}
	return events.ConfigDTO{
		Language:            string(c.Language),
		SyllableDifficulty:  string(c.Difficulty),
		CustomMinWords:      c.CustomMinWords,
		CustomMaxWords:      c.CustomMaxWords,
		MinTurnDuration:     c.MinTurnDuration,
		MaxTurnDuration:     c.MaxTurnDuration,
		MaxSyllableLifespan: c.MaxSyllableLifespan,
		InitialLives:        c.InitialLives,
		MaxLives:            c.MaxLives,
		MaxPlayers:          c.MaxPlayers,
		BonusAlphabet:       alphabet,
	}
}

// bonusLetters lists the letters with a positive weight in order
func (c Config) bonusLetters() []rune {
	var letters []rune
	for letter, weight := range c.BonusAlphabet {
		if weight > 0 {
			letters = append(letters, letter)
		}
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return letters
}

func copyAlphabet(src map[rune]int) map[rune]int {
	if src == nil {
		return nil
	}
	dst := make(map[rune]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
