package dictionary

import (
	"math/rand/v2"
	"sort"
)

const (
	minSyllableLength = 2
	maxSyllableLength = 3

	// fallbackCandidates is how many of the most common syllables are used
	// when no syllable satisfies a band
	fallbackCandidates = 25
)

// Band bounds how many dictionary words must contain a syllable for it to be
// drawn. Max of zero means unbounded.
type Band struct {
	Min int
	Max int
}

func (b Band) contains(count int) bool {
	return count >= b.Min && (b.Max == 0 || count <= b.Max)
}

type wordSet struct {
	words     map[string]struct{}
	syllables map[string]int
	// ranked holds every syllable, most common first
	ranked []string
}

func newWordSet(raw []string) *wordSet {
	set := &wordSet{words: make(map[string]struct{}, len(raw))}
	for _, w := range raw {
		w = Normalize(w)
		if playable(w) {
			set.words[w] = struct{}{}
		}
	}
	set.index()
	return set
}

func union(a, b *wordSet) *wordSet {
	set := &wordSet{words: make(map[string]struct{}, len(a.words)+len(b.words))}
	for w := range a.words {
		set.words[w] = struct{}{}
	}
	for w := range b.words {
		set.words[w] = struct{}{}
	}
	set.index()
	return set
}

func (s *wordSet) index() {
	s.syllables = make(map[string]int)
	for w := range s.words {
		for syl := range substrings(w) {
			// a word equal to the syllable cannot be played on it
			if syl != w {
				s.syllables[syl]++
			}
		}
	}

	s.ranked = make([]string, 0, len(s.syllables))
	for syl := range s.syllables {
		s.ranked = append(s.ranked, syl)
	}
	sort.Slice(s.ranked, func(i, j int) bool {
		ci, cj := s.syllables[s.ranked[i]], s.syllables[s.ranked[j]]
		if ci != cj {
			return ci > cj
		}
		return s.ranked[i] < s.ranked[j]
	})
}

// substrings returns the distinct 2 and 3 letter substrings of w
func substrings(w string) map[string]struct{} {
	rs := []rune(w)
	out := make(map[string]struct{})
	for n := minSyllableLength; n <= maxSyllableLength; n++ {
		for i := 0; i+n <= len(rs); i++ {
			out[string(rs[i:i+n])] = struct{}{}
		}
	}
	return out
}

// Candidates lists the syllables of lang inside the band, most common first.
// Every returned syllable is contained in at least one word. If the band
// matches nothing the most common syllables are returned instead.
func (d *Dictionary) Candidates(lang Language, band Band) []string {
	set, ok := d.sets[lang]
	if !ok {
		return nil
	}

	if out := set.inBand(band); len(out) > 0 {
		return out
	}

	n := min(fallbackCandidates, len(set.ranked))
	return append([]string(nil), set.ranked[:n]...)
}

// Covers reports whether some syllable of lang falls inside band. When it
// does not, Candidates falls back to the most common syllables.
func (d *Dictionary) Covers(lang Language, band Band) bool {
	set, ok := d.sets[lang]
	return ok && len(set.inBand(band)) > 0
}

func (s *wordSet) inBand(band Band) []string {
	var out []string
	for _, syl := range s.ranked {
		if band.contains(s.syllables[syl]) {
			out = append(out, syl)
		}
	}
	return out
}

// RandomSyllable draws one syllable uniformly from Candidates
func (d *Dictionary) RandomSyllable(lang Language, band Band, rng *rand.Rand) (string, error) {
	candidates := d.Candidates(lang, band)
	if len(candidates) == 0 {
		return "", ErrNoSyllables
	}
	return candidates[rng.IntN(len(candidates))], nil
}
