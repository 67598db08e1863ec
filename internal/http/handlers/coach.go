package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/http/response"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
	"github.com/yungbote/strandcoach/internal/services"
)

type CoachHandler struct {
	coach services.CoachService
}

func NewCoachHandler(coach services.CoachService) *CoachHandler {
	return &CoachHandler{coach: coach}
}

type planBody struct {
	LearnerID       string                   `json:"learner_id"`
	DurationMinutes float64                  `json:"duration_minutes"`
	Preference      *learning.CategoryVector `json:"preference,omitempty"`
}

func (b planBody) request() services.PlanRequest {
	return services.PlanRequest{
		LearnerID:  b.LearnerID,
		Duration:   time.Duration(b.DurationMinutes * float64(time.Minute)),
		Preference: b.Preference,
	}
}

type exerciseBody struct {
	ItemID          string  `json:"item_id"`
	Quality         *int    `json:"quality"`
	Category        string  `json:"category,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

type focusBody struct {
	Goal string `json:"goal"`
}

func dbcOf(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func bindPlan(c *gin.Context) (planBody, bool) {
	var body planBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return body, false
	}
	return body, true
}

// POST /api/sessions/preview
func (h *CoachHandler) Preview(c *gin.Context) {
	body, ok := bindPlan(c)
	if !ok {
		return
	}
	plan, err := h.coach.Preview(dbcOf(c), body.request())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"plan": plan})
}

// POST /api/sessions
func (h *CoachHandler) Start(c *gin.Context) {
	body, ok := bindPlan(c)
	if !ok {
		return
	}
	out, err := h.coach.StartSession(dbcOf(c), body.request())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// GET /api/sessions/:id
func (h *CoachHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	rec, err := h.coach.GetSession(dbcOf(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	exercises, err := rec.Exercises()
	if err != nil {
		response.Error(c, coacherr.Inconsistent("session", id.String(), err.Error()))
		return
	}
	reviews, err := h.coach.SessionReviews(dbcOf(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": rec, "exercises": exercises, "reviews": reviews})
}

// GET /api/cards/:item_id
func (h *CoachHandler) CardHistory(c *gin.Context) {
	out, err := h.coach.CardHistory(dbcOf(c), c.Param("item_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/sessions/:id/exercises
func (h *CoachHandler) RecordExercise(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var body exerciseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if body.Quality == nil {
		response.Error(c, coacherr.Invalid("quality", nil, "required"))
		return
	}
	out, err := h.coach.RecordExercise(dbcOf(c), services.ExerciseInput{
		SessionID:       id,
		ItemID:          body.ItemID,
		Quality:         *body.Quality,
		Category:        learning.Category(strings.TrimSpace(body.Category)),
		DurationSeconds: body.DurationSeconds,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/sessions/:id/end
func (h *CoachHandler) EndSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	out, err := h.coach.EndSession(dbcOf(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/learners/:learner_id/frontier?limit=
func (h *CoachHandler) Frontier(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, coacherr.Invalid("limit", raw, "must be an integer"))
			return
		}
		limit = n
	}
	out, err := h.coach.Frontier(dbcOf(c), c.Param("learner_id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/learners/:learner_id/balance
func (h *CoachHandler) Balance(c *gin.Context) {
	out, err := h.coach.Balance(dbcOf(c), c.Param("learner_id"), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/learners/:learner_id/promote
func (h *CoachHandler) Promote(c *gin.Context) {
	out, err := h.coach.PromoteSecureLevels(dbcOf(c), c.Param("learner_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/learners/:learner_id/focus
func (h *CoachHandler) Focus(c *gin.Context) {
	var body focusBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.coach.AdjustFocus(dbcOf(c), c.Param("learner_id"), body.Goal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/cards/bootstrap
func (h *CoachHandler) Bootstrap(c *gin.Context) {
	n, err := h.coach.Bootstrap(dbcOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"created": n})
}

// GET /api/consistency
func (h *CoachHandler) CheckConsistency(c *gin.Context) {
	out, err := h.coach.CheckConsistency(dbcOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if !out.OK() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, out)
}
