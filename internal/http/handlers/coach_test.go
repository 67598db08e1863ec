package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/strandcoach/internal/data/graph"
	"github.com/yungbote/strandcoach/internal/data/profile"
	"github.com/yungbote/strandcoach/internal/data/repos"
	"github.com/yungbote/strandcoach/internal/data/repos/testutil"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/services"
)

func newCoachRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	for _, concept := range []string{"lex.a", "lex.b"} {
		testutil.SeedCard(t, ctx, db, learning.BootstrapItemID(concept), concept, learning.CategoryExplicitStudy, learning.SkillWriting)
	}

	svc := services.NewCoachService(db, log, services.CoachDeps{
		Cards:    repos.NewCardRepo(db, log),
		Events:   repos.NewReviewEventRepo(db, log),
		Sessions: repos.NewSessionLogRepo(db, log),
		Graph:    graph.NewSQLReader(db, log),
		Profiles: profile.NewFileStore(filepath.Join(t.TempDir(), "learner.yaml"), log),
	}, services.DefaultCoachConfig())
	h := NewCoachHandler(svc)

	r := gin.New()
	r.POST("/api/sessions/preview", h.Preview)
	r.POST("/api/sessions", h.Start)
	r.GET("/api/sessions/:id", h.GetSession)
	r.POST("/api/sessions/:id/exercises", h.RecordExercise)
	r.POST("/api/sessions/:id/end", h.EndSession)
	r.GET("/api/learners/:learner_id/frontier", h.Frontier)
	r.GET("/api/learners/:learner_id/balance", h.Balance)
	r.POST("/api/learners/:learner_id/focus", h.Focus)
	r.GET("/api/cards/:item_id", h.CardHistory)
	r.GET("/api/consistency", h.CheckConsistency)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

type errorBody struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func TestCoachHandler_SessionLifecycle(t *testing.T) {
	r := newCoachRouter(t)
	body := gin.H{"learner_id": "ana", "duration_minutes": 10}

	rec := do(t, r, http.MethodPost, "/api/sessions/preview", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: %d %s", rec.Code, rec.Body.String())
	}
	preview := decode[struct {
		Plan struct {
			Exercises json.RawMessage `json:"exercises"`
		} `json:"plan"`
	}](t, rec)

	rec = do(t, r, http.MethodPost, "/api/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: %d %s", rec.Code, rec.Body.String())
	}
	start := decode[struct {
		FromCache bool `json:"from_cache"`
		Session   struct {
			ID string `json:"session_id"`
		} `json:"session"`
		Plan struct {
			Exercises json.RawMessage `json:"exercises"`
		} `json:"plan"`
	}](t, rec)
	if !start.FromCache || !bytes.Equal(preview.Plan.Exercises, start.Plan.Exercises) {
		t.Fatalf("start plan differs from preview:\n%s\n%s", preview.Plan.Exercises, start.Plan.Exercises)
	}
	base := "/api/sessions/" + start.Session.ID

	rec = do(t, r, http.MethodPost, base+"/exercises", gin.H{"item_id": "lex.a.001", "quality": 5, "duration_seconds": 50})
	if rec.Code != http.StatusOK {
		t.Fatalf("record: %d %s", rec.Code, rec.Body.String())
	}
	res := decode[services.ExerciseResult](t, rec)
	if res.MasteryStatus != learning.MasteryLearning || res.Completed != 1 || res.Feedback == "" {
		t.Fatalf("record result = %+v", res)
	}

	rec = do(t, r, http.MethodGet, base, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		Reviews []struct {
			ItemID  string `json:"item_id"`
			Quality int    `json:"quality"`
		} `json:"reviews"`
	}](t, rec)
	if len(got.Reviews) != 1 || got.Reviews[0].ItemID != "lex.a.001" || got.Reviews[0].Quality != 5 {
		t.Fatalf("session reviews = %+v", got.Reviews)
	}

	rec = do(t, r, http.MethodGet, "/api/cards/lex.a.001", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("card history: %d %s", rec.Code, rec.Body.String())
	}
	hist := decode[services.CardHistory](t, rec)
	if hist.Card == nil || hist.Card.MasteryStatus != learning.MasteryLearning || len(hist.Reviews) != 1 {
		t.Fatalf("card history = %+v", hist)
	}

	rec = do(t, r, http.MethodPost, base+"/end", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("end: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, r, http.MethodPost, base+"/end", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second end: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[errorBody](t, rec).Error.Code; got != "invalid_session_state" {
		t.Fatalf("second end code = %q", got)
	}

	rec = do(t, r, http.MethodGet, "/api/learners/ana/balance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[services.BalanceReport](t, rec); got.Sessions != 1 {
		t.Fatalf("balance sessions = %d", got.Sessions)
	}
}

func TestCoachHandler_Errors(t *testing.T) {
	r := newCoachRouter(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"bad session id", http.MethodGet, "/api/sessions/not-a-uuid", nil, http.StatusBadRequest, "invalid_session_id"},
		{"unknown session", http.MethodGet, "/api/sessions/" + uuid.NewString(), nil, http.StatusNotFound, "not_found"},
		{"missing quality", http.MethodPost, "/api/sessions/" + uuid.NewString() + "/exercises", gin.H{"item_id": "lex.a.001"}, http.StatusBadRequest, "validation_failed"},
		{"record on unknown session", http.MethodPost, "/api/sessions/" + uuid.NewString() + "/exercises", gin.H{"item_id": "lex.a.001", "quality": 3}, http.StatusNotFound, "not_found"},
		{"zero duration", http.MethodPost, "/api/sessions/preview", gin.H{"learner_id": "ana"}, http.StatusBadRequest, "validation_failed"},
		{"missing learner", http.MethodPost, "/api/sessions", gin.H{"duration_minutes": 10}, http.StatusBadRequest, "validation_failed"},
		{"unknown preference category", http.MethodPost, "/api/sessions/preview", gin.H{"learner_id": "ana", "duration_minutes": 10, "preference": gin.H{"vibes": 1}}, http.StatusBadRequest, "invalid_request"},
		{"bad frontier limit", http.MethodGet, "/api/learners/ana/frontier?limit=x", nil, http.StatusBadRequest, "validation_failed"},
		{"unknown card", http.MethodGet, "/api/cards/lex.z.001", nil, http.StatusNotFound, "not_found"},
		{"empty goal", http.MethodPost, "/api/learners/ana/focus", gin.H{"goal": ""}, http.StatusBadRequest, "validation_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if got := decode[errorBody](t, rec).Error.Code; got != tt.code {
				t.Fatalf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestCoachHandler_ConsistencyReport(t *testing.T) {
	r := newCoachRouter(t)
	rec := do(t, r, http.MethodGet, "/api/consistency", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("consistency: %d %s", rec.Code, rec.Body.String())
	}
	report := decode[services.ConsistencyReport](t, rec)
	if report.CardsChecked != 2 || len(report.Violations) != 0 {
		t.Fatalf("report = %+v", report)
	}
}
