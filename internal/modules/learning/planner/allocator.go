package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/balance"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

// MaxDuration bounds a single planned session.
const MaxDuration = 4 * time.Hour

// Source supplies the candidate pools and balance history a plan is built
// from. Implementations must return each list already in priority order.
type Source interface {
	// CategoryHistory is the time spent per category over the learner's
	// last n sessions, in seconds.
	CategoryHistory(ctx context.Context, learnerID string, n int) (learning.CategoryVector, error)
	// DueReviews are reviewed cards due at now, earliest due first.
	DueReviews(ctx context.Context, now time.Time, limit int) ([]*learning.Card, error)
	// Unstarted are never-reviewed cards whose concept may be introduced.
	Unstarted(ctx context.Context, profile learning.ProficiencyProfile, limit int) ([]*learning.Card, error)
	Frontier(ctx context.Context, profile learning.ProficiencyProfile, limit int) ([]frontier.Candidate, error)
	// Fluency are mastered cards eligible for fluency practice.
	Fluency(ctx context.Context, profile learning.ProficiencyProfile, limit int) ([]*learning.Card, error)
}

type Config struct {
	HistorySessions int
	DueLimit        int
	FrontierLimit   int
	FluencyLimit    int
}

func DefaultConfig() Config {
	return Config{HistorySessions: 10, DueLimit: 30, FrontierLimit: 20, FluencyLimit: 20}
}

type Request struct {
	LearnerID  string
	Duration   time.Duration
	Preference *learning.CategoryVector
	Profile    learning.ProficiencyProfile
	Now        time.Time
}

// Plan is an ordered, time-boxed exercise list plus the numbers that
// produced it. Time vectors are in seconds.
type Plan struct {
	LearnerID        string                  `json:"learner_id"`
	PlannedAt        time.Time               `json:"planned_at"`
	DurationSeconds  int64                   `json:"duration_seconds"`
	Exercises        []learning.Exercise     `json:"exercises"`
	History          learning.CategoryVector `json:"history_seconds"`
	Shares           learning.CategoryVector `json:"shares"`
	BaseWeights      learning.CategoryVector `json:"base_weights"`
	Weights          learning.CategoryVector `json:"weights"`
	TargetSeconds    learning.CategoryVector `json:"target_seconds"`
	FilledSeconds    learning.CategoryVector `json:"filled_seconds"`
	ShortfallSeconds learning.CategoryVector `json:"shortfall_seconds"`
	BalanceStatus    string                  `json:"balance_status"`
	Guidance         string                  `json:"guidance"`
	Notes            string                  `json:"notes"`
}

func (p *Plan) Duration() time.Duration {
	return time.Duration(p.DurationSeconds) * time.Second
}

// BootstrapConcepts lists the frontier concepts whose card the plan expects
// to exist once the session starts.
func (p *Plan) BootstrapConcepts() []learning.Exercise {
	var out []learning.Exercise
	for _, ex := range p.Exercises {
		if ex.Bootstrap {
			out = append(out, ex)
		}
	}
	return out
}

type Allocator struct {
	src Source
	cfg Config
	log *logger.Logger
}

func NewAllocator(src Source, cfg Config, baseLog *logger.Logger) *Allocator {
	def := DefaultConfig()
	if cfg.HistorySessions <= 0 {
		cfg.HistorySessions = def.HistorySessions
	}
	if cfg.DueLimit <= 0 {
		cfg.DueLimit = def.DueLimit
	}
	if cfg.FrontierLimit <= 0 {
		cfg.FrontierLimit = def.FrontierLimit
	}
	if cfg.FluencyLimit <= 0 {
		cfg.FluencyLimit = def.FluencyLimit
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Allocator{src: src, cfg: cfg, log: baseLog.With("module", "Allocator")}
}

func (a *Allocator) Config() Config { return a.cfg }

type pools struct {
	history  learning.CategoryVector
	due      []*learning.Card
	fresh    []*learning.Card
	frontier []frontier.Candidate
	fluency  []*learning.Card
}

func (a *Allocator) gather(ctx context.Context, req Request) (pools, error) {
	var p pools
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := a.src.CategoryHistory(gctx, req.LearnerID, a.cfg.HistorySessions)
		if err != nil {
			return fmt.Errorf("category history: %w", err)
		}
		p.history = h
		return nil
	})
	g.Go(func() error {
		cards, err := a.src.DueReviews(gctx, req.Now, a.cfg.DueLimit)
		if err != nil {
			return fmt.Errorf("due reviews: %w", err)
		}
		p.due = cards
		return nil
	})
	g.Go(func() error {
		cards, err := a.src.Unstarted(gctx, req.Profile, a.cfg.DueLimit)
		if err != nil {
			return fmt.Errorf("unstarted cards: %w", err)
		}
		p.fresh = cards
		return nil
	})
	g.Go(func() error {
		cands, err := a.src.Frontier(gctx, req.Profile, a.cfg.FrontierLimit)
		if err != nil {
			return fmt.Errorf("frontier: %w", err)
		}
		p.frontier = cands
		return nil
	})
	g.Go(func() error {
		cards, err := a.src.Fluency(gctx, req.Profile, a.cfg.FluencyLimit)
		if err != nil {
			return fmt.Errorf("fluency candidates: %w", err)
		}
		p.fluency = cards
		return nil
	})
	if err := g.Wait(); err != nil {
		return pools{}, err
	}
	return p, nil
}

// candidates builds each category's pool in priority order: due reviews,
// then unstarted cards, then card-less frontier concepts. Explicit study has
// no frontier pool; fluency draws only from fluency-eligible cards.
func (p pools) candidates() [learning.NumCategories][]learning.Exercise {
	var out [learning.NumCategories][]learning.Exercise
	seen := map[string]bool{}
	add := func(ex learning.Exercise) {
		i := ex.Category.Index()
		if i < 0 || seen[ex.ItemID] {
			return
		}
		seen[ex.ItemID] = true
		out[i] = append(out[i], ex)
	}

	for _, c := range p.due {
		if c.Category != learning.CategoryFluencyAutomaticity {
			add(cardExercise(c.Category, c, learning.SourceDue))
		}
	}
	for _, c := range p.fresh {
		if c.Category != learning.CategoryFluencyAutomaticity {
			add(cardExercise(c.Category, c, learning.SourceNew))
		}
	}
	for _, cand := range p.frontier {
		if cand.HasCard {
			continue
		}
		switch cand.Category {
		case learning.CategoryComprehensionInput, learning.CategoryCommunicativeOutput:
			add(bootstrapExercise(cand))
		}
	}

	// A due mastered card may also sit in the fluency pool; the fill in Plan
	// places each item at most once.
	fi := learning.CategoryFluencyAutomaticity.Index()
	seenFluency := map[string]bool{}
	for _, c := range p.fluency {
		if seenFluency[c.ItemID] {
			continue
		}
		seenFluency[c.ItemID] = true
		out[fi] = append(out[fi], cardExercise(learning.CategoryFluencyAutomaticity, c, learning.SourceFluency))
	}
	return out
}

// Plan builds a session plan. Categories without candidates get no time and
// the rest of the budget is spread over the others; time a category cannot
// fill with its own candidates is left unfilled and reported as shortfall.
func (a *Allocator) Plan(ctx context.Context, req Request) (*Plan, error) {
	req.LearnerID = strings.TrimSpace(req.LearnerID)
	if req.LearnerID == "" {
		return nil, coacherr.Invalid("learner_id", req.LearnerID, "required")
	}
	if req.Duration <= 0 || req.Duration > MaxDuration {
		return nil, coacherr.Invalid("duration", req.Duration.String(), "must be positive and at most 4h")
	}
	if req.Now.IsZero() {
		req.Now = time.Now().UTC()
	}

	p, err := a.gather(ctx, req)
	if err != nil {
		return nil, err
	}

	base, err := balance.Weights(p.history, req.Preference)
	if err != nil {
		return nil, err
	}
	pool := p.candidates()
	var available [learning.NumCategories]bool
	for i := range pool {
		available[i] = len(pool[i]) > 0
	}
	weights := balance.ApplyScarcity(base, available)
	shares := p.history.Shares()

	plan := &Plan{
		LearnerID:       req.LearnerID,
		PlannedAt:       req.Now,
		DurationSeconds: int64(req.Duration / time.Second),
		Exercises:       []learning.Exercise{},
		History:         p.history,
		Shares:          shares,
		BaseWeights:     base,
		Weights:         weights,
	}

	total := req.Duration.Seconds()
	placed := map[string]bool{}
	for i := range learning.Categories {
		target := total * weights[i] / balance.WeightTotal
		plan.TargetSeconds[i] = target
		filled := 0.0
		for _, ex := range pool[i] {
			d := float64(ex.EstimatedSeconds)
			if placed[ex.ItemID] || filled+d > target {
				continue
			}
			placed[ex.ItemID] = true
			plan.Exercises = append(plan.Exercises, ex)
			filled += d
		}
		plan.FilledSeconds[i] = filled
		plan.ShortfallSeconds[i] = target - filled
	}

	plan.BalanceStatus = balance.Status(shares)
	plan.Guidance = balance.Guidance(plan.BalanceStatus)
	if len(plan.Exercises) == 0 && !anyTrue(available) {
		plan.Notes = "No materials available for any category"
	} else {
		plan.Notes = balance.Notes(shares, weights, plan.Exercises)
	}

	a.log.Debug("Session planned",
		"learner_id", req.LearnerID,
		"duration", req.Duration.String(),
		"exercises", len(plan.Exercises),
		"weights", weights,
		"filled_seconds", plan.FilledSeconds,
	)
	return plan, nil
}

func anyTrue(v [learning.NumCategories]bool) bool {
	for _, b := range v {
		if b {
			return true
		}
	}
	return false
}
