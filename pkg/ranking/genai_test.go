package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/leimap/pkg/errors"
)

func TestGenAIScoreCachesEmbeddings(t *testing.T) {
	vectors := map[string][]float32{
		"acme":       {1, 0},
		"ACME CORP":  {0.9, 0.1},
		"Zeta Group": {0, 1},
	}
	var calls [][]string
	g := newGenAI("test-model", func(_ context.Context, texts []string) ([][]float32, error) {
		calls = append(calls, texts)
		out := make([][]float32, len(texts))
		for i, txt := range texts {
			out[i] = vectors[txt]
		}
		return out, nil
	})

	scores, err := g.Score(context.Background(), "acme", []string{"ACME CORP", "Zeta Group", "ACME CORP"})
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Greater(t, scores[0], scores[1])
	assert.Equal(t, scores[0], scores[2])

	_, err = g.Score(context.Background(), "acme", []string{"Zeta Group"})
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, []string{"acme", "ACME CORP", "Zeta Group"}, calls[0])
	assert.Equal(t, "genai:test-model", g.Name())
}

func TestGenAIScoreErrors(t *testing.T) {
	failing := newGenAI("m", func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("quota")
	})
	_, err := failing.Score(context.Background(), "q", []string{"a"})
	assert.Error(t, err)

	short := newGenAI("m", func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})
	_, err = short.Score(context.Background(), "q", []string{"a"})
	assert.Error(t, err)
}

func TestNewGenAIRequiresCredentials(t *testing.T) {
	_, err := NewGenAI(context.Background(), GenAIConfig{})
	assert.True(t, errors.Is(err, pkgerrors.ErrAPIKeyRequired))
}

func TestGenAIConfigFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "proj")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "europe-west4")

	cfg := GenAIConfigFromEnv()
	assert.Equal(t, GenAIConfig{APIKey: "g-key", Project: "proj", Location: "europe-west4"}, cfg)
}
