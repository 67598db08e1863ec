package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/strandcoach/internal/data/profile"
	"github.com/yungbote/strandcoach/internal/data/repos"
	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/balance"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	"github.com/yungbote/strandcoach/internal/modules/learning/fsrs"
	"github.com/yungbote/strandcoach/internal/modules/learning/planner"
	"github.com/yungbote/strandcoach/internal/modules/learning/promotion"
	"github.com/yungbote/strandcoach/internal/observability"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

type CoachConfig struct {
	Planner   planner.Config
	CacheTTL  time.Duration
	SkillRule promotion.SkillRule
}

func DefaultCoachConfig() CoachConfig {
	return CoachConfig{
		Planner:   planner.DefaultConfig(),
		CacheTTL:  planner.DefaultCacheTTL,
		SkillRule: promotion.DefaultSkillRule(),
	}
}

// CoachDeps are the stores and collaborators the coach service reads and
// writes. Metrics and Now are optional.
type CoachDeps struct {
	Cards     repos.CardRepo
	Events    repos.ReviewEventRepo
	Sessions  repos.SessionLogRepo
	Graph     frontier.Reader
	Profiles  profile.Store
	Cache     planner.Cache
	Scheduler *fsrs.Scheduler
	Metrics   *observability.Metrics
	Now       func() time.Time
}

type PlanRequest struct {
	LearnerID  string
	Duration   time.Duration
	Preference *learning.CategoryVector
}

func (r PlanRequest) key() planner.Key {
	return planner.NewKey(r.LearnerID, r.Duration, r.Preference)
}

type SessionStart struct {
	Session      *types.SessionRecord `json:"session"`
	Plan         *planner.Plan        `json:"plan"`
	FromCache    bool                 `json:"from_cache"`
	Superseded   []uuid.UUID          `json:"superseded,omitempty"`
	Bootstrapped int                  `json:"bootstrapped_cards"`
}

// ExerciseInput is one graded exercise. Category and DurationSeconds are
// optional: the category defaults to the planned exercise's, then the card's,
// and a zero duration is replaced by the exercise estimate.
type ExerciseInput struct {
	SessionID       uuid.UUID
	ItemID          string
	Quality         int
	Category        learning.Category
	DurationSeconds float64
}

type ExerciseResult struct {
	SessionID      uuid.UUID               `json:"session_id"`
	ItemID         string                  `json:"item_id"`
	Category       learning.Category       `json:"category"`
	Quality        int                     `json:"quality"`
	NextDue        time.Time               `json:"next_due"`
	Stability      float64                 `json:"stability"`
	Difficulty     float64                 `json:"difficulty"`
	Retrievability float64                 `json:"retrievability"`
	MasteryStatus  learning.MasteryStatus  `json:"mastery_status"`
	PreviousStatus learning.MasteryStatus  `json:"previous_status"`
	StatusChanged  bool                    `json:"status_changed"`
	Completed      int                     `json:"completed"`
	Planned        int                     `json:"planned"`
	SessionShares  learning.CategoryVector `json:"session_shares"`
	Feedback       string                  `json:"feedback"`
}

type SessionSummary struct {
	Session        *types.SessionRecord    `json:"session"`
	Completed      int                     `json:"completed"`
	Planned        int                     `json:"planned"`
	AverageQuality float64                 `json:"average_quality"`
	ActualSeconds  learning.CategoryVector `json:"actual_seconds"`
	SessionShares  learning.CategoryVector `json:"session_shares"`
	HistoryShares  learning.CategoryVector `json:"history_shares"`
	BalanceStatus  string                  `json:"balance_status"`
	Guidance       string                  `json:"guidance"`
}

// CardHistory is a card's current schedule with every review it has received.
type CardHistory struct {
	Card    *types.Card          `json:"card"`
	Reviews []*types.ReviewEvent `json:"reviews"`
}

type BalanceReport struct {
	LearnerID      string                  `json:"learner_id"`
	Sessions       int                     `json:"history_sessions"`
	History        learning.CategoryVector `json:"history_seconds"`
	Shares         learning.CategoryVector `json:"shares"`
	Deviation      learning.CategoryVector `json:"deviation"`
	Weights        learning.CategoryVector `json:"weights"`
	Status         string                  `json:"status"`
	Guidance       string                  `json:"guidance"`
	NeedsAttention bool                    `json:"needs_attention"`
}

type FrontierReport struct {
	LearnerID  string               `json:"learner_id"`
	MaxLevel   learning.Level       `json:"max_level"`
	Candidates []frontier.Candidate `json:"candidates"`
}

type PromotionReport struct {
	LearnerID       string                      `json:"learner_id"`
	Evaluations     []promotion.SkillEvaluation `json:"evaluations"`
	Promoted        int                         `json:"promoted"`
	FluencyEligible []string                    `json:"fluency_eligible"`
}

type Violation struct {
	Entity string `json:"entity"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

type ConsistencyReport struct {
	CardsChecked int         `json:"cards_checked"`
	Concepts     int         `json:"concepts"`
	Violations   []Violation `json:"violations"`
}

func (r *ConsistencyReport) OK() bool { return len(r.Violations) == 0 }

type FocusResult struct {
	LearnerID      string                  `json:"learner_id"`
	Goal           string                  `json:"goal"`
	Preference     learning.CategoryVector `json:"preference"`
	PreferenceHash string                  `json:"preference_hash"`
}

type CoachService interface {
	Preview(dbc dbctx.Context, req PlanRequest) (*planner.Plan, error)
	StartSession(dbc dbctx.Context, req PlanRequest) (*SessionStart, error)
	RecordExercise(dbc dbctx.Context, in ExerciseInput) (*ExerciseResult, error)
	EndSession(dbc dbctx.Context, sessionID uuid.UUID) (*SessionSummary, error)
	GetSession(dbc dbctx.Context, sessionID uuid.UUID) (*types.SessionRecord, error)
	SessionReviews(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.ReviewEvent, error)
	CardHistory(dbc dbctx.Context, itemID string) (*CardHistory, error)
	Frontier(dbc dbctx.Context, learnerID string, limit int) (*FrontierReport, error)
	Balance(dbc dbctx.Context, learnerID string, preference *learning.CategoryVector) (*BalanceReport, error)
	PromoteSecureLevels(dbc dbctx.Context, learnerID string) (*PromotionReport, error)
	Bootstrap(dbc dbctx.Context) (int, error)
	CheckConsistency(dbc dbctx.Context) (*ConsistencyReport, error)
	AdjustFocus(dbc dbctx.Context, learnerID, goal string) (*FocusResult, error)
}

type coachService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      CoachConfig
	cards    repos.CardRepo
	events   repos.ReviewEventRepo
	sessions repos.SessionLogRepo
	graph    frontier.Reader
	profiles profile.Store
	cache    planner.Cache
	sched    *fsrs.Scheduler
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewCoachService(db *gorm.DB, baseLog *logger.Logger, deps CoachDeps, cfg CoachConfig) CoachService {
	def := DefaultCoachConfig()
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.SkillRule.Threshold <= 0 {
		cfg.SkillRule = def.SkillRule
	}
	if deps.Scheduler == nil {
		deps.Scheduler = fsrs.Default()
	}
	if deps.Cache == nil {
		deps.Cache = planner.NewMemoryCache()
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &coachService{
		db:       db,
		log:      baseLog.With("service", "CoachService"),
		cfg:      cfg,
		cards:    deps.Cards,
		events:   deps.Events,
		sessions: deps.Sessions,
		graph:    deps.Graph,
		profiles: deps.Profiles,
		cache:    deps.Cache,
		sched:    deps.Scheduler,
		metrics:  deps.Metrics,
		now:      deps.Now,
	}
}

func (s *coachService) criteria() promotion.Criteria { return s.cfg.SkillRule.Criteria }

// begin opens a span for op and returns a closer that records the outcome.
func (s *coachService) begin(dbc *dbctx.Context, op string, attrs ...attribute.KeyValue) func(*error) {
	if dbc.Ctx == nil {
		dbc.Ctx = context.Background()
	}
	ctx, span := observability.Tracer().Start(dbc.Ctx, "coach."+op, trace.WithAttributes(attrs...))
	dbc.Ctx = ctx
	start := time.Now()
	return func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.ObserveOperation(op, err, time.Since(start))
	}
}

func (s *coachService) inTx(dbc dbctx.Context, fn func(dbctx.Context) error) error {
	base := dbc.Tx
	if base == nil {
		base = s.db
	}
	return base.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

func (s *coachService) normalize(req PlanRequest) (PlanRequest, error) {
	req.LearnerID = strings.TrimSpace(req.LearnerID)
	if req.LearnerID == "" {
		return req, coacherr.Invalid("learner_id", req.LearnerID, "required")
	}
	if req.Duration <= 0 || req.Duration > planner.MaxDuration {
		return req, coacherr.Invalid("duration", req.Duration.String(), "must be positive and at most 4h")
	}
	req.Duration = req.Duration.Truncate(time.Second)
	return req, nil
}

// snapshot loads the graph and every card, refusing to continue when any
// card breaks the card invariants.
func (s *coachService) snapshot(dbc dbctx.Context) (*frontier.Graph, []*types.Card, error) {
	g, err := s.graph.Load(dbc.Ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load graph: %w", err)
	}
	cards, err := s.cards.ListAll(dbc)
	if err != nil {
		return nil, nil, fmt.Errorf("list cards: %w", err)
	}
	var first error
	bad := 0
	for _, c := range cards {
		if cerr := s.criteria().CheckCard(c); cerr != nil {
			bad++
			if first == nil {
				first = cerr
			}
			s.log.Error("Inconsistent card", "item_id", c.ItemID, "error", cerr)
		}
	}
	if bad > 0 {
		s.metrics.AddConsistencyViolations(bad)
		return nil, nil, fmt.Errorf("%d inconsistent cards: %w", bad, first)
	}
	return g, cards, nil
}

func (s *coachService) plan(dbc dbctx.Context, req PlanRequest, now time.Time) (*planner.Plan, error) {
	prof, err := s.profiles.Get(dbc.Ctx, req.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	g, cards, err := s.snapshot(dbc)
	if err != nil {
		return nil, err
	}
	src := newSnapshotSource(dbc, g, cards, s.sessions, s.events)
	plan, err := planner.NewAllocator(src, s.cfg.Planner, s.log).Plan(dbc.Ctx, planner.Request{
		LearnerID:  req.LearnerID,
		Duration:   req.Duration,
		Preference: req.Preference,
		Profile:    prof,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}
	for i, c := range learning.Categories {
		s.metrics.ObservePlan(string(c), plan.FilledSeconds[i], plan.ShortfallSeconds[i])
	}
	return plan, nil
}

func (s *coachService) Preview(dbc dbctx.Context, req PlanRequest) (plan *planner.Plan, err error) {
	defer s.begin(&dbc, "preview", attribute.String("learner_id", req.LearnerID))(&err)
	if req, err = s.normalize(req); err != nil {
		return nil, err
	}
	now := s.now()
	plan, err = s.plan(dbc, req, now)
	if err != nil {
		return nil, err
	}
	if perr := s.cache.Put(dbc.Ctx, planner.NewEntry(req.key(), plan, now, s.cfg.CacheTTL)); perr != nil {
		s.log.Warn("Plan cache put failed", "learner_id", req.LearnerID, "error", perr)
	}
	return plan, nil
}

// StartSession reuses a still-valid previewed plan verbatim, or plans fresh.
// Any unfinished session of the learner is superseded in the same
// transaction that freezes the plan and bootstraps its frontier cards.
func (s *coachService) StartSession(dbc dbctx.Context, req PlanRequest) (out *SessionStart, err error) {
	defer s.begin(&dbc, "start_session", attribute.String("learner_id", req.LearnerID))(&err)
	if req, err = s.normalize(req); err != nil {
		return nil, err
	}
	now := s.now()
	key := req.key()

	out = &SessionStart{}
	entry, hit, cerr := s.cache.Get(dbc.Ctx, key, now)
	if cerr != nil {
		s.log.Warn("Plan cache get failed", "learner_id", req.LearnerID, "error", cerr)
		hit = false
	}
	s.metrics.IncPlanCache(hit)
	if hit && entry.Plan != nil {
		out.Plan = entry.Plan
		out.FromCache = true
	} else {
		if out.Plan, err = s.plan(dbc, req, now); err != nil {
			return nil, err
		}
	}

	exercises, err := json.Marshal(out.Plan.Exercises)
	if err != nil {
		return nil, fmt.Errorf("encode planned exercises: %w", err)
	}

	err = s.inTx(dbc, func(inner dbctx.Context) error {
		open, err := s.sessions.ListInProgress(inner, req.LearnerID)
		if err != nil {
			return err
		}
		for _, prev := range open {
			if err := s.sessions.UpdateFields(inner, prev.ID, map[string]interface{}{
				"state":      learning.SessionEnded,
				"end_reason": learning.EndReasonSuperseded,
				"ended_at":   now,
			}); err != nil {
				return fmt.Errorf("supersede session %s: %w", prev.ID, err)
			}
			out.Superseded = append(out.Superseded, prev.ID)
		}

		if boot := out.Plan.BootstrapConcepts(); len(boot) > 0 {
			rows := make([]*types.Card, 0, len(boot))
			for _, ex := range boot {
				rows = append(rows, learning.NewCard(ex.ItemID, ex.ConceptID, ex.Category, ex.Skill))
			}
			n, err := s.cards.CreateIgnoreDuplicates(inner, rows)
			if err != nil {
				return fmt.Errorf("bootstrap cards: %w", err)
			}
			out.Bootstrapped = n
		}

		startedAt := now
		rec, err := s.sessions.Create(inner, &types.SessionRecord{
			LearnerID:             req.LearnerID,
			State:                 learning.SessionInProgress,
			PlannedAt:             out.Plan.PlannedAt,
			StartedAt:             &startedAt,
			DurationTargetSeconds: out.Plan.DurationSeconds,
			PlannedExercises:      exercises,
			NegotiatedWeights:     learning.EncodeVector(out.Plan.Weights),
			PlannedTime:           learning.EncodeVector(out.Plan.TargetSeconds),
			CategoryActuals:       learning.EncodeVector(learning.CategoryVector{}),
			PlannedCount:          len(out.Plan.Exercises),
			BalanceStatus:         out.Plan.BalanceStatus,
			Notes:                 out.Plan.Notes,
		})
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		out.Session = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ierr := s.cache.Invalidate(dbc.Ctx, key); ierr != nil {
		s.log.Warn("Plan cache invalidate failed", "learner_id", req.LearnerID, "error", ierr)
	}
	s.metrics.IncSession("started")
	for range out.Superseded {
		s.metrics.IncSession("superseded")
	}
	s.log.Info("Session started",
		"learner_id", req.LearnerID,
		"session_id", out.Session.ID.String(),
		"exercises", len(out.Plan.Exercises),
		"from_cache", out.FromCache,
		"superseded", len(out.Superseded),
	)
	return out, nil
}

func validateExercise(in ExerciseInput) (ExerciseInput, error) {
	if in.SessionID == uuid.Nil {
		return in, coacherr.Invalid("session_id", in.SessionID, "required")
	}
	in.ItemID = strings.TrimSpace(in.ItemID)
	if in.ItemID == "" {
		return in, coacherr.Invalid("item_id", in.ItemID, "required")
	}
	if err := fsrs.ValidateQuality(in.Quality); err != nil {
		return in, err
	}
	if in.Category != "" && !in.Category.Valid() {
		return in, coacherr.Invalid("category", in.Category, "unknown category")
	}
	if d := in.DurationSeconds; math.IsNaN(d) || d < 0 || d > planner.MaxDuration.Seconds() {
		return in, coacherr.Invalid("duration_seconds", d, "must be a non-negative number of seconds up to 4h")
	}
	return in, nil
}

// RecordExercise applies one review. The card update, the review event and
// the session counters commit together or not at all.
func (s *coachService) RecordExercise(dbc dbctx.Context, in ExerciseInput) (out *ExerciseResult, err error) {
	defer s.begin(&dbc, "record_exercise",
		attribute.String("item_id", in.ItemID),
		attribute.Int("quality", in.Quality),
	)(&err)
	if in, err = validateExercise(in); err != nil {
		return nil, err
	}
	now := s.now()

	var learnerID string
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		sess, err := s.sessions.GetByIDForUpdate(inner, in.SessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return fmt.Errorf("session %s: %w", in.SessionID, coacherr.ErrNotFound)
		}
		if sess.State != learning.SessionInProgress {
			return fmt.Errorf("record exercise on %s session %s: %w", sess.State, sess.ID, coacherr.ErrSessionState)
		}
		learnerID = sess.LearnerID

		card, err := s.cards.GetByID(inner, in.ItemID)
		if err != nil {
			return err
		}
		if card == nil {
			return coacherr.Invalid("item_id", in.ItemID, "unknown item")
		}
		if cerr := s.criteria().CheckCard(card); cerr != nil {
			s.log.Error("Inconsistent card", "item_id", card.ItemID, "error", cerr)
			s.metrics.AddConsistencyViolations(1)
			return cerr
		}

		planned, err := sess.Exercises()
		if err != nil {
			return coacherr.Inconsistent("session", sess.ID.String(), "planned exercises unreadable: "+err.Error())
		}
		var ex *learning.Exercise
		for i := range planned {
			if planned[i].ItemID == in.ItemID {
				ex = &planned[i]
				break
			}
		}
		cat := in.Category
		if cat == "" && ex != nil {
			cat = ex.Category
		}
		if cat == "" {
			cat = card.Category
		}
		dur := in.DurationSeconds
		if dur == 0 {
			if ex != nil {
				dur = float64(ex.EstimatedSeconds)
			} else {
				dur = planner.EstimatedDuration(cat).Seconds()
			}
		}

		before := *card
		res, err := s.sched.Review(fsrs.StateOf(card), in.Quality, now)
		if err != nil {
			return err
		}
		fsrs.Apply(card, res.State)
		card.QualityTotal += in.Quality
		card.MasteryStatus = s.criteria().AfterReview(card, in.Quality)
		if err := s.cards.UpdateSchedule(inner, card); err != nil {
			return fmt.Errorf("update card %s: %w", card.ItemID, err)
		}

		if _, err := s.events.Create(inner, &types.ReviewEvent{
			LearnerID:        sess.LearnerID,
			SessionID:        sess.ID,
			ItemID:           card.ItemID,
			Category:         cat,
			Quality:          in.Quality,
			DurationSeconds:  dur,
			ReviewedAt:       now,
			Retrievability:   res.Retrievability,
			StabilityBefore:  before.Stability,
			StabilityAfter:   card.Stability,
			DifficultyBefore: before.Difficulty,
			DifficultyAfter:  card.Difficulty,
			MasteryBefore:    before.MasteryStatus,
			MasteryAfter:     card.MasteryStatus,
			NextDueAt:        res.NextDue,
		}); err != nil {
			return fmt.Errorf("append review event: %w", err)
		}

		actuals, err := sess.Actuals()
		if err != nil {
			return coacherr.Inconsistent("session", sess.ID.String(), "category actuals unreadable: "+err.Error())
		}
		actuals.Add(cat, dur)
		changed := before.MasteryStatus != card.MasteryStatus
		masteryChanges := sess.MasteryChanges
		if changed {
			masteryChanges++
		}
		if err := s.sessions.UpdateFields(inner, sess.ID, map[string]interface{}{
			"completed_count":  sess.CompletedCount + 1,
			"quality_total":    sess.QualityTotal + in.Quality,
			"mastery_changes":  masteryChanges,
			"category_actuals": learning.EncodeVector(actuals),
		}); err != nil {
			return fmt.Errorf("update session %s: %w", sess.ID, err)
		}

		out = &ExerciseResult{
			SessionID:      sess.ID,
			ItemID:         card.ItemID,
			Category:       cat,
			Quality:        in.Quality,
			NextDue:        res.NextDue,
			Stability:      card.Stability,
			Difficulty:     card.Difficulty,
			Retrievability: res.Retrievability,
			MasteryStatus:  card.MasteryStatus,
			PreviousStatus: before.MasteryStatus,
			StatusChanged:  changed,
			Completed:      sess.CompletedCount + 1,
			Planned:        sess.PlannedCount,
			SessionShares:  actuals.Shares(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.Feedback = exerciseFeedback(out)
	s.metrics.IncReview(string(out.Category), out.Quality)
	s.metrics.IncMasteryTransition(string(out.PreviousStatus), string(out.MasteryStatus))
	s.log.Debug("Exercise recorded",
		"learner_id", learnerID,
		"session_id", out.SessionID.String(),
		"item_id", out.ItemID,
		"quality", out.Quality,
		"mastery_status", out.MasteryStatus,
	)
	return out, nil
}

// EndSession closes an in-progress session. Ending twice is a session-state
// error.
func (s *coachService) EndSession(dbc dbctx.Context, sessionID uuid.UUID) (out *SessionSummary, err error) {
	defer s.begin(&dbc, "end_session", attribute.String("session_id", sessionID.String()))(&err)
	if sessionID == uuid.Nil {
		return nil, coacherr.Invalid("session_id", sessionID, "required")
	}
	now := s.now()

	err = s.inTx(dbc, func(inner dbctx.Context) error {
		sess, err := s.sessions.GetByIDForUpdate(inner, sessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return fmt.Errorf("session %s: %w", sessionID, coacherr.ErrNotFound)
		}
		if sess.State != learning.SessionInProgress {
			return fmt.Errorf("end %s session %s: %w", sess.State, sess.ID, coacherr.ErrSessionState)
		}
		actuals, err := sess.Actuals()
		if err != nil {
			return coacherr.Inconsistent("session", sess.ID.String(), "category actuals unreadable: "+err.Error())
		}
		history, err := categoryHistory(inner, s.sessions, s.events, sess.LearnerID, s.historySessions())
		if err != nil {
			return fmt.Errorf("category history: %w", err)
		}
		historyShares := history.Shares()
		status := balance.Status(historyShares)

		if err := s.sessions.UpdateFields(inner, sess.ID, map[string]interface{}{
			"state":          learning.SessionEnded,
			"end_reason":     learning.EndReasonCompleted,
			"ended_at":       now,
			"balance_status": status,
		}); err != nil {
			return err
		}
		updated, err := s.sessions.GetByID(inner, sess.ID)
		if err != nil {
			return err
		}

		out = &SessionSummary{
			Session:       updated,
			Completed:     sess.CompletedCount,
			Planned:       sess.PlannedCount,
			ActualSeconds: actuals,
			SessionShares: actuals.Shares(),
			HistoryShares: historyShares,
			BalanceStatus: status,
			Guidance:      balance.Guidance(status),
		}
		if sess.CompletedCount > 0 {
			out.AverageQuality = float64(sess.QualityTotal) / float64(sess.CompletedCount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncSession("ended")
	s.log.Info("Session ended",
		"session_id", sessionID.String(),
		"completed", out.Completed,
		"planned", out.Planned,
		"balance_status", out.BalanceStatus,
	)
	return out, nil
}

func (s *coachService) GetSession(dbc dbctx.Context, sessionID uuid.UUID) (*types.SessionRecord, error) {
	if sessionID == uuid.Nil {
		return nil, coacherr.Invalid("session_id", sessionID, "required")
	}
	rec, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, coacherr.ErrNotFound)
	}
	return rec, nil
}

// SessionReviews lists the review events recorded in a session, oldest first.
func (s *coachService) SessionReviews(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.ReviewEvent, error) {
	if _, err := s.GetSession(dbc, sessionID); err != nil {
		return nil, err
	}
	rows, err := s.events.ListBySessionID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*types.ReviewEvent{}
	}
	return rows, nil
}

func (s *coachService) CardHistory(dbc dbctx.Context, itemID string) (out *CardHistory, err error) {
	defer s.begin(&dbc, "card_history", attribute.String("item_id", itemID))(&err)
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, coacherr.Invalid("item_id", itemID, "required")
	}
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		card, err := s.cards.GetByID(inner, itemID)
		if err != nil {
			return err
		}
		if card == nil {
			return fmt.Errorf("card %s: %w", itemID, coacherr.ErrNotFound)
		}
		reviews, err := s.events.ListByItemID(inner, itemID)
		if err != nil {
			return err
		}
		if reviews == nil {
			reviews = []*types.ReviewEvent{}
		}
		out = &CardHistory{Card: card, Reviews: reviews}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *coachService) historySessions() int {
	if n := s.cfg.Planner.HistorySessions; n > 0 {
		return n
	}
	return planner.DefaultConfig().HistorySessions
}
