package profile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

func TestFileStore_MissingFileYieldsDefaults(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "learner.yaml"), logger.Nop())
	got, err := s.Get(context.Background(), "ana")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(learning.DefaultProfile("ana"), got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStore_ReadsAndPreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learner.yaml")
	body := `learner_id: ana
current_level: B1
goals: travel to Mexico
proficiency:
  reading:
    current_level: B1
    secure_level: A2
  speaking:
    secure_level: A1
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path, logger.Nop())
	ctx := context.Background()

	p, err := s.Get(ctx, "ana")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.CurrentLevel != learning.LevelB1 || p.SecureLevel(learning.SkillReading) != learning.LevelA2 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Skills[learning.SkillReading].CurrentLevel != learning.LevelB1 {
		t.Fatalf("reading current level: %+v", p.Skills[learning.SkillReading])
	}

	sl := p.Skills[learning.SkillSpeaking]
	sl.SecureLevel = learning.LevelA2
	p.Skills[learning.SkillSpeaking] = sl
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := s.Get(ctx, "ana")
	if err != nil {
		t.Fatalf("Get after save: %v", err)
	}
	if diff := cmp.Diff(p, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "travel to Mexico") {
		t.Fatalf("unknown key dropped on save:\n%s", raw)
	}
}

func TestFileStore_OtherLearnerGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learner.yaml")
	if err := os.WriteFile(path, []byte("learner_id: ben\ncurrent_level: C1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewFileStore(path, logger.Nop()).Get(context.Background(), "ana")
	if err != nil || got.CurrentLevel != learning.LevelA1 {
		t.Fatalf("Get: got=%+v err=%v", got, err)
	}
}

func TestFileStore_RejectsBadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learner.yaml")
	if err := os.WriteFile(path, []byte("proficiency:\n  reading:\n    secure_level: Z3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path, logger.Nop()).Get(context.Background(), "ana")
	if !errors.Is(err, coacherr.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}
