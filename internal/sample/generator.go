package sample

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/logger"
	"github.com/koustreak/querytalk/internal/relation"
	"github.com/koustreak/querytalk/internal/schema"
)

// curatedKeywords are the clause keywords a curated sample set tries to
// cover, in priority order.
var curatedKeywords = []string{"group by", "where", "order by", "join"}

// Generator produces randomized example queries against a live database.
// Every returned sample has already been executed successfully with a
// non-empty result, so re-running it is safe. The random source is
// injected so callers can seed it for reproducible output; a nil source
// falls back to an unseeded one.
type Generator struct {
	db  database.DB
	h   Heuristics
	rng *rand.Rand
	log *logger.Logger
}

// NewGenerator builds a generator over db with default heuristics.
func NewGenerator(db database.DB, rng *rand.Rand, log *logger.Logger) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if log == nil {
		log = logger.Global()
	}
	return &Generator{db: db, h: DefaultHeuristics(), rng: rng, log: log}
}

// WithHeuristics overrides the composition thresholds.
func (g *Generator) WithHeuristics(h Heuristics) *Generator {
	g.h = h
	return g
}

func (g *Generator) composer(rel relation.SampleMap) *composer {
	return &composer{db: g.db, probe: prober{db: g.db}, rel: rel, h: g.h, rng: g.rng}
}

// Generate composes a single validated sample against the current schema,
// retrying discarded candidates up to the attempt budget.
func (g *Generator) Generate(ctx context.Context) (Sample, error) {
	snap, err := schema.Take(ctx, g.db)
	if err != nil {
		return Sample{}, err
	}
	c := g.composer(relation.BuildSampleMap(snap))

	for attempt := 0; attempt < g.h.Attempts; attempt++ {
		s, ok, err := c.compose(ctx, snap, "")
		if err != nil {
			return Sample{}, err
		}
		if ok {
			return s, nil
		}
	}
	return Sample{}, errs.New(errs.ErrKindNotFound,
		fmt.Sprintf("no executable sample after %d attempts", g.h.Attempts))
}

// GenerateWithKeyword returns validated samples whose statement text
// contains the keyword, case-insensitively. An empty slice means no
// candidate within the attempt budget both executed and matched; that is
// not an error.
func (g *Generator) GenerateWithKeyword(ctx context.Context, keyword string) ([]Sample, error) {
	snap, err := schema.Take(ctx, g.db)
	if err != nil {
		return nil, err
	}
	c := g.composer(relation.BuildSampleMap(snap))

	seen := make(map[string]bool)
	out := make([]Sample, 0, g.h.Attempts)
	for attempt := 0; attempt < g.h.Attempts; attempt++ {
		s, ok, err := c.compose(ctx, snap, keyword)
		if err != nil {
			return nil, err
		}
		if !ok || !s.HasKeyword(keyword) || seen[s.SQL] {
			continue
		}
		seen[s.SQL] = true
		out = append(out, s)
	}
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

// GenerateSet composes a batch of validated candidates and curates them
// down to at most MaxQueries distinct samples, preferring coverage of the
// main clause keywords over raw variety.
func (g *Generator) GenerateSet(ctx context.Context) ([]Sample, error) {
	snap, err := schema.Take(ctx, g.db)
	if err != nil {
		return nil, err
	}
	c := g.composer(relation.BuildSampleMap(snap))

	var candidates []Sample
	discarded := 0
	for i := 0; i < g.h.Attempts; i++ {
		s, ok, err := c.compose(ctx, snap, "")
		if err != nil {
			return nil, err
		}
		if !ok {
			discarded++
			continue
		}
		candidates = append(candidates, s)
	}

	curated := curate(candidates, g.h.MaxQueries)
	g.log.With().
		Int("candidates", len(candidates)).
		Int("discarded", discarded).
		Int("curated", len(curated)).
		Logger().Debug("sample set generated")
	return curated, nil
}

// curate deduplicates candidates by SQL text, picks one sample per target
// keyword first, then fills the remaining slots in generation order.
func curate(candidates []Sample, max int) []Sample {
	seen := make(map[string]bool, len(candidates))
	distinct := make([]Sample, 0, len(candidates))
	for _, s := range candidates {
		if seen[s.SQL] {
			continue
		}
		seen[s.SQL] = true
		distinct = append(distinct, s)
	}

	picked := make(map[string]bool, max)
	var out []Sample
	for _, keyword := range curatedKeywords {
		if len(out) >= max {
			break
		}
		for _, s := range distinct {
			if picked[s.SQL] || !s.HasKeyword(keyword) {
				continue
			}
			picked[s.SQL] = true
			out = append(out, s)
			break
		}
	}
	for _, s := range distinct {
		if len(out) >= max {
			break
		}
		if !picked[s.SQL] {
			picked[s.SQL] = true
			out = append(out, s)
		}
	}
	return out
}
