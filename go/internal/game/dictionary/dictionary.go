package dictionary

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinWordLength is the shortest word the game accepts
const MinWordLength = 3

// Language selects which word list a room plays with
type Language string

const (
	Spanish Language = "SPANISH"
	English Language = "ENGLISH"
	Both    Language = "BOTH"
)

// ParseLanguage validates a wire value
func ParseLanguage(s string) (Language, bool) {
	switch l := Language(strings.ToUpper(strings.TrimSpace(s))); l {
	case Spanish, English, Both:
		return l, true
	default:
		return "", false
	}
}

var (
	ErrNoSyllables     = errors.New("no syllables available")
	ErrUnknownLanguage = errors.New("unknown language")
)

//go:embed words/*.txt
var builtinWords embed.FS

var builtinFiles = map[Language]string{
	Spanish: "words/es.txt",
	English: "words/en.txt",
}

// Dictionary is an immutable set of word lists with a syllable index.
// It is safe for concurrent use.
type Dictionary struct {
	sets map[Language]*wordSet
}

// New builds a dictionary from in-memory word lists. The BOTH list is derived.
func New(lists map[Language][]string) *Dictionary {
	d := &Dictionary{sets: make(map[Language]*wordSet)}
	for _, lang := range []Language{Spanish, English} {
		d.sets[lang] = newWordSet(lists[lang])
	}
	d.sets[Both] = union(d.sets[Spanish], d.sets[English])
	return d
}

// Load reads newline separated word lists
func Load(sources map[Language]io.Reader) (*Dictionary, error) {
	lists := make(map[Language][]string, len(sources))
	for lang, r := range sources {
		if lang != Spanish && lang != English {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
		}
		words, err := readLines(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s word list: %w", lang, err)
		}
		lists[lang] = words
	}
	return New(lists), nil
}

// LoadFiles loads word lists from disk. Languages without a path use the
// embedded list.
func LoadFiles(paths map[Language]string) (*Dictionary, error) {
	sources := make(map[Language]io.Reader)
	for lang, name := range builtinFiles {
		path := paths[lang]
		if path == "" {
			f, err := builtinWords.Open(name)
			if err != nil {
				return nil, fmt.Errorf("failed to open embedded %s word list: %w", lang, err)
			}
			defer f.Close()
			sources[lang] = f
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open word list %s: %w", path, err)
		}
		defer f.Close()
		sources[lang] = f
	}
	return Load(sources)
}

// Builtin returns the dictionary made of the embedded word lists
func Builtin() *Dictionary {
	d, err := LoadFiles(nil)
	if err != nil {
		// the embedded files are part of the binary
		panic(err)
	}
	return d
}

// Normalize trims, case folds and strips diacritics so "Canción" and
// "cancion" compare equal.
func Normalize(word string) string {
	word = cases.Fold().String(strings.TrimSpace(word))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, word)
	if err != nil {
		return word
	}
	return out
}

// Contains reports whether the word is in the list for lang
func (d *Dictionary) Contains(lang Language, word string) bool {
	set, ok := d.sets[lang]
	if !ok {
		return false
	}
	_, found := set.words[Normalize(word)]
	return found
}

// Size is the number of distinct words for lang
func (d *Dictionary) Size(lang Language) int {
	if set, ok := d.sets[lang]; ok {
		return len(set.words)
	}
	return 0
}

// WordCount is the number of words longer than the syllable that contain it
func (d *Dictionary) WordCount(lang Language, syllable string) int {
	if set, ok := d.sets[lang]; ok {
		return set.syllables[Normalize(syllable)]
	}
	return 0
}

func readLines(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			words = append(words, line)
		}
	}
	return words, scanner.Err()
}

// playable filters out short words and anything that is not letters only
func playable(word string) bool {
	if utf8.RuneCountInString(word) < MinWordLength {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
