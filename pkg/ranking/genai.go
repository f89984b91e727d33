package ranking

import (
	"context"
	"os"
	"slices"
	"sync"
	"time"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"

	"github.com/agentstation/leimap/pkg/errors"
)

// DefaultEmbeddingModel is used when GenAIConfig.Model is empty.
const DefaultEmbeddingModel = "text-embedding-004"

// credentialTimeout bounds Application Default Credentials detection.
const credentialTimeout = 2 * time.Second

// GenAIConfig selects the embedding backend. An API key selects the Gemini API;
// a project selects Vertex AI with Application Default Credentials.
type GenAIConfig struct {
	APIKey   string
	Project  string
	Location string
	Model    string
}

// GenAIConfigFromEnv reads GEMINI_API_KEY or GOOGLE_API_KEY, and
// GOOGLE_CLOUD_PROJECT / GOOGLE_CLOUD_LOCATION.
func GenAIConfigFromEnv() GenAIConfig {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	return GenAIConfig{
		APIKey:   key,
		Project:  os.Getenv("GOOGLE_CLOUD_PROJECT"),
		Location: os.Getenv("GOOGLE_CLOUD_LOCATION"),
	}
}

type embedFunc func(ctx context.Context, texts []string) ([][]float32, error)

// GenAI scores names by cosine similarity of text embeddings.
type GenAI struct {
	model string
	embed embedFunc

	mu    sync.Mutex
	cache map[string][]float32
}

// NewGenAI creates an embedding scorer for the configured backend.
func NewGenAI(ctx context.Context, cfg GenAIConfig) (*GenAI, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}

	var cc *genai.ClientConfig
	switch {
	case cfg.APIKey != "" && cfg.Project == "":
		cc = &genai.ClientConfig{Backend: genai.BackendGeminiAPI, APIKey: cfg.APIKey}
	case cfg.Project != "":
		if cfg.Location == "" {
			cfg.Location = "us-central1"
		}
		cc = &genai.ClientConfig{Backend: genai.BackendVertexAI, Project: cfg.Project, Location: cfg.Location}
		if cfg.APIKey != "" {
			cc.APIKey = cfg.APIKey
		} else {
			creds, err := detectCredentials(ctx)
			if err != nil {
				return nil, err
			}
			cc.Credentials = creds
		}
	default:
		return nil, errors.NewAuthenticationError("genai", "api_key",
			"set GEMINI_API_KEY for the Gemini API or GOOGLE_CLOUD_PROJECT for Vertex AI", nil)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.NewConfigError("genai", "failed to create client", err)
	}

	model := cfg.Model
	return newGenAI(model, func(ctx context.Context, texts []string) ([][]float32, error) {
		contents := make([]*genai.Content, len(texts))
		for i, t := range texts {
			contents[i] = genai.NewContentFromText(t, genai.RoleUser)
		}
		resp, err := client.Models.EmbedContent(ctx, model, contents, &genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		})
		if err != nil {
			return nil, errors.WrapAPI("genai", 0, err)
		}
		out := make([][]float32, len(resp.Embeddings))
		for i, e := range resp.Embeddings {
			if e != nil {
				out[i] = e.Values
			}
		}
		return out, nil
	}), nil
}

func newGenAI(model string, embed embedFunc) *GenAI {
	return &GenAI{model: model, embed: embed, cache: map[string][]float32{}}
}

// Name implements Scorer.
func (g *GenAI) Name() string {
	return "genai:" + g.model
}

// Score implements Scorer. Embeddings are cached per text for the life of the scorer.
func (g *GenAI) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	texts := append([]string{query}, candidates...)

	var missing []string
	g.mu.Lock()
	for _, t := range texts {
		if _, ok := g.cache[t]; !ok && !slices.Contains(missing, t) {
			missing = append(missing, t)
		}
	}
	g.mu.Unlock()

	if len(missing) > 0 {
		vecs, err := g.embed(ctx, missing)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(missing) {
			return nil, errors.NewResourceError("embed", "texts", g.model,
				errors.New("embedding count does not match input count"))
		}
		g.mu.Lock()
		for i, t := range missing {
			g.cache[t] = vecs[i]
		}
		g.mu.Unlock()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	q := g.cache[query]
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = Cosine(q, g.cache[c])
	}
	return scores, nil
}

// detectCredentials looks up Application Default Credentials without
// letting a misconfigured environment block startup.
func detectCredentials(ctx context.Context) (*auth.Credentials, error) {
	type result struct {
		creds *auth.Credentials
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes: []string{"https://www.googleapis.com/auth/cloud-platform"},
		})
		ch <- result{creds, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, errors.NewAuthenticationError("vertex", "adc", "no application default credentials", res.err)
		}
		return res.creds, nil
	case <-time.After(credentialTimeout):
		return nil, errors.NewTimeoutError("credential detection", credentialTimeout.String(), "application default credentials not found in time")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
