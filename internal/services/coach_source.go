package services

import (
	"context"
	"sort"
	"time"

	"github.com/yungbote/strandcoach/internal/data/repos"
	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	"github.com/yungbote/strandcoach/internal/modules/learning/fsrs"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
)

// snapshotSource serves planner.Source from one consistent read of the graph
// and the card store. History is the only pool read lazily.
type snapshotSource struct {
	dbc      dbctx.Context
	graph    *frontier.Graph
	cards    []*types.Card
	progress frontier.ProgressIndex
	sessions repos.SessionLogRepo
	events   repos.ReviewEventRepo
}

func newSnapshotSource(dbc dbctx.Context, g *frontier.Graph, cards []*types.Card, sessions repos.SessionLogRepo, events repos.ReviewEventRepo) *snapshotSource {
	return &snapshotSource{
		dbc:      dbc,
		graph:    g,
		cards:    cards,
		progress: frontier.IndexCards(cards),
		sessions: sessions,
		events:   events,
	}
}

func (s *snapshotSource) CategoryHistory(ctx context.Context, learnerID string, n int) (learning.CategoryVector, error) {
	return categoryHistory(dbctx.Context{Ctx: ctx, Tx: s.dbc.Tx}, s.sessions, s.events, learnerID, n)
}

func (s *snapshotSource) DueReviews(ctx context.Context, now time.Time, limit int) ([]*learning.Card, error) {
	out := []*learning.Card{}
	for _, c := range s.cards {
		if c.Repetitions == 0 {
			continue
		}
		if fsrs.IsDue(fsrs.StateOf(c), now) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := fsrs.DueAt(fsrs.StateOf(out[i]))
		b, _ := fsrs.DueAt(fsrs.StateOf(out[j]))
		if !a.Equal(b) {
			return a.Before(b)
		}
		return out[i].ItemID < out[j].ItemID
	})
	return truncate(out, limit), nil
}

// Unstarted keeps new cards whose concept is admissible. Cards of concepts
// outside the graph have no prerequisites to wait on and no tier to cap.
func (s *snapshotSource) Unstarted(ctx context.Context, profile learning.ProficiencyProfile, limit int) ([]*learning.Card, error) {
	maxLevel := profile.MaxFrontierLevel()
	out := []*learning.Card{}
	for _, c := range s.cards {
		if c.MasteryStatus != learning.MasteryNew {
			continue
		}
		if !frontier.Admissible(s.graph, s.progress, c.ConceptID) {
			continue
		}
		if lvl := s.graph.Level(c.ConceptID); lvl.Valid() && lvl > maxLevel {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := s.graph.Level(out[i].ConceptID), s.graph.Level(out[j].ConceptID)
		if a != b {
			return a < b
		}
		return out[i].ItemID < out[j].ItemID
	})
	return truncate(out, limit), nil
}

func (s *snapshotSource) Frontier(ctx context.Context, profile learning.ProficiencyProfile, limit int) ([]frontier.Candidate, error) {
	return frontier.Compute(s.graph, s.progress, profile.MaxFrontierLevel(), limit)
}

// Fluency concatenates each skill's selection in skill order.
func (s *snapshotSource) Fluency(ctx context.Context, profile learning.ProficiencyProfile, limit int) ([]*learning.Card, error) {
	out := []*learning.Card{}
	for _, skill := range learning.Skills {
		out = append(out, frontier.SelectFluency(s.graph, s.cards, skill, profile.SecureLevel(skill), limit)...)
	}
	return truncate(out, limit), nil
}

func categoryHistory(dbc dbctx.Context, sessions repos.SessionLogRepo, events repos.ReviewEventRepo, learnerID string, n int) (learning.CategoryVector, error) {
	ids, err := sessions.RecentStartedIDs(dbc, learnerID, n)
	if err != nil {
		return learning.CategoryVector{}, err
	}
	if len(ids) == 0 {
		return learning.CategoryVector{}, nil
	}
	return events.SumDurationByCategory(dbc, ids)
}

func truncate(cards []*learning.Card, limit int) []*learning.Card {
	if limit > 0 && len(cards) > limit {
		return cards[:limit]
	}
	return cards
}
