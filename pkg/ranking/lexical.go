package ranking

import (
	"context"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lexical scores names by the cosine similarity of their character trigram
// and word profiles. Case, accents and punctuation are ignored.
type Lexical struct {
	// WordWeight scales word features relative to trigram features.
	WordWeight float64
}

// NewLexical returns a Lexical scorer with default weights.
func NewLexical() *Lexical {
	return &Lexical{WordWeight: 2}
}

// Name implements Scorer.
func (l *Lexical) Name() string {
	return "lexical"
}

// Score implements Scorer.
func (l *Lexical) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := l.profile(query)
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = similarity(q, l.profile(c))
	}
	return scores, nil
}

// Normalize folds case, strips diacritics and collapses every run of
// non-alphanumerics to a single space.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)

	var sb strings.Builder
	space := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			space = false
			continue
		}
		if !space {
			sb.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(sb.String())
}

type profile map[string]float64

func (l *Lexical) profile(s string) profile {
	n := Normalize(s)
	p := profile{}
	if n == "" {
		return p
	}
	padded := []rune(" " + n + " ")
	for i := 0; i+3 <= len(padded); i++ {
		p["t:"+string(padded[i:i+3])]++
	}
	for _, w := range strings.Fields(n) {
		p["w:"+w] += l.WordWeight
	}
	return p
}

func similarity(a, b profile) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, na, nb float64
	for k, v := range a {
		na += v * v
		dot += v * b[k]
	}
	for _, v := range b {
		nb += v * v
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
