// Package ranking orders candidate entity names by similarity to a query.
//
// Two scorers are provided: Lexical, which compares character trigrams and
// words after Unicode folding and needs no network, and GenAI, which compares
// embedding vectors from the Gemini API or Vertex AI.
package ranking

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/agentstation/leimap/pkg/errors"
)

// Scorer assigns each candidate a similarity to query. The returned slice is
// parallel to candidates; higher is more similar.
type Scorer interface {
	Name() string
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// Scored is a candidate with its similarity.
type Scored struct {
	Value string  `json:"value"`
	Score float64 `json:"score"`
}

// Rank scores candidates and returns the topN best, highest first.
// Ties keep their original order. A non-positive topN returns all.
func Rank(ctx context.Context, s Scorer, query string, candidates []string, topN int) ([]Scored, error) {
	if len(candidates) == 0 {
		return []Scored{}, nil
	}
	scores, err := s.Score(ctx, query, candidates)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(candidates) {
		return nil, errors.NewResourceError("score", "candidates", s.Name(),
			errors.New("scorer returned a mismatched number of scores"))
	}

	out := make([]Scored, len(candidates))
	for i, c := range candidates {
		out[i] = Scored{Value: c, Score: scores[i]}
	}
	slices.SortStableFunc(out, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if topN > 0 && topN < len(out) {
		out = out[:topN]
	}
	return out, nil
}

// Cosine returns the cosine similarity of two equal-length vectors,
// or 0 when either has zero magnitude.
func Cosine[T ~float32 | ~float64](a, b []T) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Fallback scores with Primary and switches to Secondary when Primary fails.
type Fallback struct {
	Primary   Scorer
	Secondary Scorer
	OnError   func(error)
}

// Name implements Scorer.
func (f *Fallback) Name() string {
	return f.Primary.Name() + "+" + f.Secondary.Name()
}

// Score implements Scorer.
func (f *Fallback) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	scores, err := f.Primary.Score(ctx, query, candidates)
	if err == nil {
		return scores, nil
	}
	if errors.IsCanceled(err) {
		return nil, err
	}
	if f.OnError != nil {
		f.OnError(err)
	}
	return f.Secondary.Score(ctx, query, candidates)
}
