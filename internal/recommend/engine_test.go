// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package recommend

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/reel-atlas/reelatlas/internal/config"
	"github.com/reel-atlas/reelatlas/internal/provider"
	"github.com/reel-atlas/reelatlas/internal/provider/tmdb"
)

type fakeGenerator struct {
	mu         sync.Mutex
	model      string
	resolveErr error
	resolves   int
	reply      string
	replyErr   error
	prompts    []string
}

func (f *fakeGenerator) ResolveActiveModel(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.model, nil
}

func (f *fakeGenerator) GenerateText(_ context.Context, _, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.replyErr != nil {
		return "", f.replyErr
	}
	return f.reply, nil
}

type fakeMovies struct {
	mu       sync.Mutex
	calls    [][]int
	discover func(ids []int) ([]tmdb.Movie, error)
}

func (f *fakeMovies) GetPopular(_ context.Context) ([]tmdb.Movie, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMovies) GetMovie(_ context.Context, _ int) (*tmdb.Movie, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMovies) DiscoverByGenres(_ context.Context, ids []int) ([]tmdb.Movie, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ids)
	f.mu.Unlock()
	return f.discover(ids)
}

func (f *fakeMovies) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testConfig() config.RecommendConfig {
	return config.RecommendConfig{
		Aggregation: "combined",
		CallTimeout: 5 * time.Second,
	}
}

func TestRecommendCombined(t *testing.T) {
	gen := &fakeGenerator{
		model: "gemini-1.5-flash",
		reply: "```json\n[\" action \", \"DRAMA\", \"Sci-Fi\"]\n```",
	}
	movies := &fakeMovies{
		discover: func(ids []int) ([]tmdb.Movie, error) {
			return []tmdb.Movie{
				{ID: 1, Title: "First", GenreIDs: []int{28}},
				{ID: 2, Title: "Second", GenreIDs: []int{18}},
			}, nil
		},
	}

	engine := NewEngine(gen, movies, testConfig())
	result, err := engine.Recommend(context.Background(), "something intense")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(result.Movies) != 2 {
		t.Errorf("len(Movies) = %d, want 2", len(result.Movies))
	}
	if result.Model != "gemini-1.5-flash" {
		t.Errorf("Model = %q, want gemini-1.5-flash", result.Model)
	}

	// "Sci-Fi" is not in the taxonomy and drops silently; the raw names
	// still report it.
	wantIDs := []int{28, 18}
	if len(result.GenreIDs) != len(wantIDs) {
		t.Fatalf("GenreIDs = %v, want %v", result.GenreIDs, wantIDs)
	}
	for i, id := range wantIDs {
		if result.GenreIDs[i] != id {
			t.Errorf("GenreIDs[%d] = %d, want %d", i, result.GenreIDs[i], id)
		}
	}
	if len(result.Genres) != 3 {
		t.Errorf("len(Genres) = %d, want 3", len(result.Genres))
	}

	if movies.callCount() != 1 {
		t.Errorf("discover calls = %d, want 1 combined request", movies.callCount())
	}
	if got := movies.calls[0]; len(got) != 2 || got[0] != 28 || got[1] != 18 {
		t.Errorf("discover ids = %v, want [28 18]", got)
	}
}

func TestRecommendPromptTemplate(t *testing.T) {
	gen := &fakeGenerator{model: "gemini-1.5-flash", reply: `["Action"]`}
	movies := &fakeMovies{
		discover: func([]int) ([]tmdb.Movie, error) { return []tmdb.Movie{}, nil },
	}

	engine := NewEngine(gen, movies, testConfig())
	if _, err := engine.Recommend(context.Background(), "car chases"); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("GenerateText calls = %d, want 1", len(gen.prompts))
	}
	sent := gen.prompts[0]
	if !strings.Contains(sent, `"car chases"`) {
		t.Errorf("prompt %q does not embed the quoted user text", sent)
	}
	if !strings.Contains(sent, "ONLY a JSON array") {
		t.Errorf("prompt %q missing the output constraint", sent)
	}
}

func TestRecommendEmptyPrompt(t *testing.T) {
	engine := NewEngine(&fakeGenerator{}, &fakeMovies{}, testConfig())

	for _, prompt := range []string{"", "   ", "\n\t"} {
		if _, err := engine.Recommend(context.Background(), prompt); !errors.Is(err, ErrEmptyPrompt) {
			t.Errorf("Recommend(%q) error = %v, want ErrEmptyPrompt", prompt, err)
		}
	}
}

func TestRecommendNoGenresResolved(t *testing.T) {
	gen := &fakeGenerator{model: "gemini-1.5-flash", reply: `["Telenovela", "Mukbang"]`}
	movies := &fakeMovies{
		discover: func([]int) ([]tmdb.Movie, error) {
			t.Error("discover must not be called when no genres resolve")
			return nil, nil
		},
	}

	engine := NewEngine(gen, movies, testConfig())
	_, err := engine.Recommend(context.Background(), "something obscure")
	if !errors.Is(err, ErrNoGenresResolved) {
		t.Errorf("Recommend() error = %v, want ErrNoGenresResolved", err)
	}
}

func TestRecommendParseFailure(t *testing.T) {
	gen := &fakeGenerator{
		model: "gemini-1.5-flash",
		reply: "I think you would enjoy action movies and maybe some drama.",
	}
	engine := NewEngine(gen, &fakeMovies{}, testConfig())

	_, err := engine.Recommend(context.Background(), "surprise me")
	var decodeErr *provider.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Recommend() error = %v, want *provider.DecodeError", err)
	}
	if decodeErr.Op != "extract-genres" {
		t.Errorf("DecodeError.Op = %q, want extract-genres", decodeErr.Op)
	}
}

func TestRecommendResolveErrorPropagates(t *testing.T) {
	resolveErr := &provider.StatusError{Provider: "genai", Op: "list-models", StatusCode: 500}
	gen := &fakeGenerator{resolveErr: resolveErr}
	engine := NewEngine(gen, &fakeMovies{}, testConfig())

	_, err := engine.Recommend(context.Background(), "anything")
	var statusErr *provider.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Recommend() error = %v, want *provider.StatusError", err)
	}
	if statusErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", statusErr.StatusCode)
	}
}

func TestModelCacheReuse(t *testing.T) {
	gen := &fakeGenerator{model: "gemini-1.5-flash", reply: `["Action"]`}
	movies := &fakeMovies{
		discover: func([]int) ([]tmdb.Movie, error) { return []tmdb.Movie{}, nil },
	}

	cfg := testConfig()
	cfg.ModelCacheTTL = time.Minute
	engine := NewEngine(gen, movies, cfg)
	t.Cleanup(engine.Close)

	for i := 0; i < 3; i++ {
		if _, err := engine.Recommend(context.Background(), "repeat"); err != nil {
			t.Fatalf("Recommend() #%d error = %v", i, err)
		}
	}
	if gen.resolves != 1 {
		t.Errorf("resolves = %d, want 1 with cache enabled", gen.resolves)
	}

	engine.InvalidateModel()
	if _, err := engine.Recommend(context.Background(), "again"); err != nil {
		t.Fatalf("Recommend() after invalidate error = %v", err)
	}
	if gen.resolves != 2 {
		t.Errorf("resolves = %d after invalidate, want 2", gen.resolves)
	}
}

func TestModelCacheDisabled(t *testing.T) {
	gen := &fakeGenerator{model: "gemini-1.5-flash", reply: `["Action"]`}
	movies := &fakeMovies{
		discover: func([]int) ([]tmdb.Movie, error) { return []tmdb.Movie{}, nil },
	}

	cfg := testConfig()
	cfg.ModelCacheTTL = 0
	engine := NewEngine(gen, movies, cfg)

	for i := 0; i < 2; i++ {
		if _, err := engine.Recommend(context.Background(), "repeat"); err != nil {
			t.Fatalf("Recommend() #%d error = %v", i, err)
		}
	}
	if gen.resolves != 2 {
		t.Errorf("resolves = %d, want 2 with cache disabled", gen.resolves)
	}
}

func TestFanOutConcatenates(t *testing.T) {
	gen := &fakeGenerator{model: "gemini-1.5-flash", reply: `["Action", "Drama"]`}
	byGenre := map[int][]tmdb.Movie{
		28: {{ID: 10, Title: "Chase"}, {ID: 11, Title: "Blast"}},
		18: {{ID: 20, Title: "Tears"}},
	}
	movies := &fakeMovies{
		discover: func(ids []int) ([]tmdb.Movie, error) {
			if len(ids) != 1 {
				t.Errorf("fan-out branch got ids %v, want a single id", ids)
			}
			return byGenre[ids[0]], nil
		},
	}

	cfg := testConfig()
	cfg.Aggregation = config.AggregationFanOut
	engine := NewEngine(gen, movies, cfg)

	result, err := engine.Recommend(context.Background(), "mixed feelings")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if movies.callCount() != 2 {
		t.Errorf("discover calls = %d, want 2", movies.callCount())
	}

	// Branches complete in any order; compare as a set.
	gotIDs := make([]int, 0, len(result.Movies))
	for _, m := range result.Movies {
		gotIDs = append(gotIDs, m.ID)
	}
	sort.Ints(gotIDs)
	wantIDs := []int{10, 11, 20}
	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("movie ids = %v, want %v", gotIDs, wantIDs)
	}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Errorf("movie ids = %v, want %v", gotIDs, wantIDs)
			break
		}
	}
}

func TestFanOutFailFast(t *testing.T) {
	gen := &fakeGenerator{model: "gemini-1.5-flash", reply: `["Action", "Drama"]`}
	movies := &fakeMovies{
		discover: func(ids []int) ([]tmdb.Movie, error) {
			if ids[0] == 18 {
				return nil, &provider.StatusError{Provider: "tmdb", Op: "discover", StatusCode: 503}
			}
			return []tmdb.Movie{{ID: 10}}, nil
		},
	}

	cfg := testConfig()
	cfg.Aggregation = config.AggregationFanOut
	engine := NewEngine(gen, movies, cfg)

	_, err := engine.Recommend(context.Background(), "mixed feelings")
	var aggErr *AggregationError
	if !errors.As(err, &aggErr) {
		t.Fatalf("Recommend() error = %v, want *AggregationError", err)
	}
	if aggErr.GenreID != 18 {
		t.Errorf("AggregationError.GenreID = %d, want 18", aggErr.GenreID)
	}
	var statusErr *provider.StatusError
	if !errors.As(err, &statusErr) {
		t.Errorf("AggregationError does not unwrap to the provider error: %v", err)
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `["Action"]`, `["Action"]`},
		{"json fence", "```json\n[\"Action\"]\n```", `["Action"]`},
		{"bare fence", "```\n[\"Action\"]\n```", `["Action"]`},
		{"surrounding whitespace", "  \n[\"Action\"]\n  ", `["Action"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.input); got != tt.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseGenreArrayRejectsMixedTypes(t *testing.T) {
	if _, err := parseGenreArray(`["Action", 42]`); err == nil {
		t.Error("parseGenreArray() = nil error for mixed-type array, want DecodeError")
	}
	if _, err := parseGenreArray(`{"genres": ["Action"]}`); err == nil {
		t.Error("parseGenreArray() = nil error for object payload, want DecodeError")
	}
}

func TestParseGenreArrayRejectsNull(t *testing.T) {
	// null decodes into a nil slice without an unmarshal error; it must not
	// pass as an empty genre list.
	for _, payload := range []string{`null`, "```json\nnull\n```"} {
		_, err := parseGenreArray(payload)
		var decodeErr *provider.DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("parseGenreArray(%q) error = %v, want *provider.DecodeError", payload, err)
		}
	}

	// An explicitly empty array is still a valid parse.
	names, err := parseGenreArray(`[]`)
	if err != nil {
		t.Fatalf("parseGenreArray(`[]`) error = %v", err)
	}
	if names == nil || len(names) != 0 {
		t.Errorf("parseGenreArray(`[]`) = %v, want empty non-nil slice", names)
	}
}
