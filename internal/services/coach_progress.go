package services

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/balance"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	"github.com/yungbote/strandcoach/internal/modules/learning/planner"
	"github.com/yungbote/strandcoach/internal/modules/learning/promotion"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
)

func requireLearner(learnerID string) (string, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return "", coacherr.Invalid("learner_id", learnerID, "required")
	}
	return learnerID, nil
}

func (s *coachService) Frontier(dbc dbctx.Context, learnerID string, limit int) (out *FrontierReport, err error) {
	defer s.begin(&dbc, "frontier", attribute.String("learner_id", learnerID))(&err)
	if learnerID, err = requireLearner(learnerID); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, coacherr.Invalid("limit", limit, "must be non-negative")
	}
	prof, err := s.profiles.Get(dbc.Ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	g, cards, err := s.snapshot(dbc)
	if err != nil {
		return nil, err
	}
	maxLevel := prof.MaxFrontierLevel()
	cands, err := frontier.Compute(g, frontier.IndexCards(cards), maxLevel, limit)
	if err != nil {
		return nil, err
	}
	return &FrontierReport{LearnerID: learnerID, MaxLevel: maxLevel, Candidates: cands}, nil
}

// Balance reports the learner's recent category shares and the weights the
// next plan would start from before scarcity is applied.
func (s *coachService) Balance(dbc dbctx.Context, learnerID string, preference *learning.CategoryVector) (out *BalanceReport, err error) {
	defer s.begin(&dbc, "balance", attribute.String("learner_id", learnerID))(&err)
	if learnerID, err = requireLearner(learnerID); err != nil {
		return nil, err
	}
	ids, err := s.sessions.RecentStartedIDs(dbc, learnerID, s.historySessions())
	if err != nil {
		return nil, err
	}
	var history learning.CategoryVector
	if len(ids) > 0 {
		if history, err = s.events.SumDurationByCategory(dbc, ids); err != nil {
			return nil, err
		}
	}
	weights, err := balance.Weights(history, preference)
	if err != nil {
		return nil, err
	}
	shares := history.Shares()
	status := balance.Status(shares)
	return &BalanceReport{
		LearnerID:      learnerID,
		Sessions:       len(ids),
		History:        history,
		Shares:         shares,
		Deviation:      balance.Deviation(shares),
		Weights:        weights,
		Status:         status,
		Guidance:       balance.Guidance(status),
		NeedsAttention: balance.NeedsAttention(shares),
	}, nil
}

// PromoteSecureLevels advances each skill's secure level by at most one tier
// and marks mastered cards at or below their skill's secure level as fluency
// eligible. Card marks and the profile save commit together.
func (s *coachService) PromoteSecureLevels(dbc dbctx.Context, learnerID string) (out *PromotionReport, err error) {
	defer s.begin(&dbc, "promote_secure_levels", attribute.String("learner_id", learnerID))(&err)
	if learnerID, err = requireLearner(learnerID); err != nil {
		return nil, err
	}
	prof, err := s.profiles.Get(dbc.Ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	g, cards, err := s.snapshot(dbc)
	if err != nil {
		return nil, err
	}
	leveled := make([]promotion.LeveledCard, 0, len(cards))
	for _, c := range cards {
		leveled = append(leveled, promotion.LeveledCard{Card: c, Level: g.Level(c.ConceptID)})
	}

	updated, evals := s.cfg.SkillRule.Promote(prof, leveled)
	out = &PromotionReport{LearnerID: learnerID, Evaluations: evals, FluencyEligible: []string{}}
	for _, ev := range evals {
		if ev.Promoted {
			out.Promoted++
		}
	}
	for _, lc := range leveled {
		if s.cfg.SkillRule.FluencyEligible(updated, lc) {
			out.FluencyEligible = append(out.FluencyEligible, lc.Card.ItemID)
		}
	}

	// Card marks roll back if the profile save fails.
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		if len(out.FluencyEligible) > 0 {
			if _, err := s.cards.SetMasteryStatus(inner, out.FluencyEligible, learning.MasteryFluencyEligible); err != nil {
				return fmt.Errorf("mark fluency eligible: %w", err)
			}
		}
		if out.Promoted > 0 {
			if err := s.profiles.Save(inner.Ctx, updated); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range evals {
		if ev.Promoted {
			s.metrics.IncSkillPromotion(string(ev.Skill), ev.To.String())
			s.log.Info("Secure level promoted",
				"learner_id", learnerID,
				"skill", string(ev.Skill),
				"from", ev.From.String(),
				"to", ev.To.String(),
				"mastered", ev.Mastered,
				"total", ev.Total,
			)
		}
	}
	for range out.FluencyEligible {
		s.metrics.IncMasteryTransition(string(learning.MasteryMastered), string(learning.MasteryFluencyEligible))
	}
	return out, nil
}

// Bootstrap creates a new card for every graph concept that has none.
func (s *coachService) Bootstrap(dbc dbctx.Context) (n int, err error) {
	defer s.begin(&dbc, "bootstrap")(&err)
	g, cards, err := s.snapshot(dbc)
	if err != nil {
		return 0, err
	}
	have := frontier.IndexCards(cards)
	var rows []*types.Card
	for _, node := range g.Nodes() {
		if have[node.ConceptID].Cards > 0 {
			continue
		}
		cat, err := node.Type.Category()
		if err != nil {
			return 0, coacherr.Inconsistent("concept", node.ConceptID, err.Error())
		}
		rows = append(rows, learning.NewCard(learning.BootstrapItemID(node.ConceptID), node.ConceptID, cat, node.Type.DefaultSkill()))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err = s.cards.CreateIgnoreDuplicates(dbc, rows)
	if err != nil {
		return 0, err
	}
	s.log.Info("Cards bootstrapped", "created", n, "concepts", g.Len())
	return n, nil
}

// CheckConsistency reports every card invariant violation and a graph that
// fails to load. Only storage failures are returned as errors.
func (s *coachService) CheckConsistency(dbc dbctx.Context) (out *ConsistencyReport, err error) {
	defer s.begin(&dbc, "check_consistency")(&err)
	out = &ConsistencyReport{Violations: []Violation{}}

	g, gerr := s.graph.Load(dbc.Ctx)
	switch {
	case gerr == nil:
		out.Concepts = g.Len()
	case coacherr.Is(gerr, coacherr.ErrConsistency) || coacherr.Is(gerr, coacherr.ErrValidation):
		out.Violations = append(out.Violations, violationOf("graph", gerr))
	default:
		return nil, fmt.Errorf("load graph: %w", gerr)
	}

	cards, err := s.cards.ListAll(dbc)
	if err != nil {
		return nil, err
	}
	out.CardsChecked = len(cards)
	for _, c := range cards {
		if cerr := s.criteria().CheckCard(c); cerr != nil {
			out.Violations = append(out.Violations, violationOf("card", cerr))
			s.log.Error("Inconsistent card", "item_id", c.ItemID, "error", cerr)
		}
	}
	s.metrics.AddConsistencyViolations(len(out.Violations))
	return out, nil
}

func violationOf(entity string, err error) Violation {
	var ce *coacherr.ConsistencyError
	if coacherr.As(err, &ce) {
		return Violation{Entity: ce.Entity, ID: ce.ID, Reason: ce.Reason}
	}
	return Violation{Entity: entity, Reason: err.Error()}
}

// AdjustFocus turns a free-text goal into a preference vector for the next
// plan, damping categories the learner already spends most time on.
func (s *coachService) AdjustFocus(dbc dbctx.Context, learnerID, goal string) (out *FocusResult, err error) {
	defer s.begin(&dbc, "adjust_focus", attribute.String("learner_id", learnerID))(&err)
	if learnerID, err = requireLearner(learnerID); err != nil {
		return nil, err
	}
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, coacherr.Invalid("goal", goal, "required")
	}
	history, err := categoryHistory(dbc, s.sessions, s.events, learnerID, s.historySessions())
	if err != nil {
		return nil, err
	}
	var shares *learning.CategoryVector
	if history.Sum() > 0 {
		sh := history.Shares()
		shares = &sh
	}
	pref := balance.PreferenceForGoal(goal, shares)
	return &FocusResult{
		LearnerID:      learnerID,
		Goal:           goal,
		Preference:     pref,
		PreferenceHash: planner.PreferenceHash(&pref),
	}, nil
}

// exerciseFeedback is the one-line summary handed back to the coach.
func exerciseFeedback(r *ExerciseResult) string {
	parts := make([]string, 0, 4)
	switch {
	case r.Quality >= 4:
		parts = append(parts, "Strong performance!")
	case r.Quality >= 3:
		parts = append(parts, "Good effort.")
	default:
		parts = append(parts, "Keep practicing.")
	}
	parts = append(parts, fmt.Sprintf("Stability: %.1f days", r.Stability))
	if r.StatusChanged {
		parts = append(parts, "Status changed to: "+string(r.MasteryStatus))
	} else {
		parts = append(parts, "Status: "+string(r.MasteryStatus))
	}
	if balance.NeedsAttention(r.SessionShares) {
		parts = append(parts, "Strand balance needs attention")
	}
	return strings.Join(parts, " | ")
}
