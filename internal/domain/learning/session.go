package learning

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionState string

const (
	SessionUnstarted  SessionState = "unstarted"
	SessionInProgress SessionState = "in_progress"
	SessionEnded      SessionState = "ended"
)

const (
	EndReasonCompleted  = "completed"
	EndReasonSuperseded = "superseded"
)

type ExerciseSource string

const (
	SourceDue      ExerciseSource = "due"
	SourceNew      ExerciseSource = "new"
	SourceFrontier ExerciseSource = "frontier"
	SourceFluency  ExerciseSource = "fluency"
)

// Exercise is one entry of a planned session.
type Exercise struct {
	ItemID           string         `json:"item_id"`
	ConceptID        string         `json:"concept_id"`
	Category         Category       `json:"category"`
	ExerciseType     string         `json:"exercise_type"`
	Source           ExerciseSource `json:"source"`
	EstimatedSeconds int            `json:"estimated_seconds"`
	Instructions     string         `json:"instructions"`
	// Bootstrap marks a frontier concept whose card is created when the session starts.
	Bootstrap bool  `json:"bootstrap,omitempty"`
	Skill     Skill `json:"skill,omitempty"`
}

// SessionRecord is one planning+execution cycle. PlannedExercises is frozen once
// the session starts.
type SessionRecord struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"session_id"`
	LearnerID             string         `gorm:"column:learner_id;not null;index" json:"learner_id"`
	State                 SessionState   `gorm:"column:state;not null;index" json:"state"`
	EndReason             string         `gorm:"column:end_reason" json:"end_reason,omitempty"`
	PlannedAt             time.Time      `gorm:"column:planned_at;not null" json:"planned_at"`
	StartedAt             *time.Time     `gorm:"column:started_at;index" json:"started_at,omitempty"`
	EndedAt               *time.Time     `gorm:"column:ended_at" json:"ended_at,omitempty"`
	DurationTargetSeconds int64          `gorm:"column:duration_target_seconds;not null" json:"duration_target_seconds"`
	PlannedExercises      datatypes.JSON `gorm:"column:planned_exercises" json:"planned_exercises"`
	NegotiatedWeights     datatypes.JSON `gorm:"column:negotiated_weights" json:"negotiated_weights"`
	PlannedTime           datatypes.JSON `gorm:"column:planned_time" json:"planned_time"`
	CategoryActuals       datatypes.JSON `gorm:"column:category_actuals" json:"category_actuals"`
	PlannedCount          int            `gorm:"column:planned_count;not null;default:0" json:"planned_count"`
	CompletedCount        int            `gorm:"column:completed_count;not null;default:0" json:"completed_count"`
	QualityTotal          int            `gorm:"column:quality_total;not null;default:0" json:"quality_total"`
	MasteryChanges        int            `gorm:"column:mastery_changes;not null;default:0" json:"mastery_changes"`
	BalanceStatus         string         `gorm:"column:balance_status" json:"balance_status"`
	Notes                 string         `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt             time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"not null" json:"updated_at"`
}

func (SessionRecord) TableName() string { return "session_log" }

func (s *SessionRecord) DurationTarget() time.Duration {
	return time.Duration(s.DurationTargetSeconds) * time.Second
}

func (s *SessionRecord) Exercises() ([]Exercise, error) {
	out := []Exercise{}
	if s == nil || len(s.PlannedExercises) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(s.PlannedExercises, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SessionRecord) Actuals() (CategoryVector, error) {
	return decodeVector(s.CategoryActuals)
}

func (s *SessionRecord) Weights() (CategoryVector, error) {
	return decodeVector(s.NegotiatedWeights)
}

func (s *SessionRecord) Planned() (CategoryVector, error) {
	return decodeVector(s.PlannedTime)
}

func decodeVector(raw datatypes.JSON) (CategoryVector, error) {
	var v CategoryVector
	if len(raw) == 0 {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}

// EncodeVector serializes v for a datatypes.JSON column.
func EncodeVector(v CategoryVector) datatypes.JSON {
	raw, _ := v.MarshalJSON()
	return datatypes.JSON(raw)
}
