package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

// Store reads and writes a learner's proficiency profile.
type Store interface {
	Get(ctx context.Context, learnerID string) (learning.ProficiencyProfile, error)
	Save(ctx context.Context, p learning.ProficiencyProfile) error
}

// FileStore keeps the profile in a learner YAML file:
//
//	learner_id: ana
//	current_level: A2
//	proficiency:
//	  reading: {current_level: A2, secure_level: A1}
//
// Keys it does not know about are preserved on save.
type FileStore struct {
	path string
	mu   sync.Mutex
	log  *logger.Logger
}

func NewFileStore(path string, baseLog *logger.Logger) *FileStore {
	return &FileStore{path: path, log: baseLog.With("store", "LearnerProfileFile")}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(ctx context.Context, learnerID string) (learning.ProficiencyProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return learning.ProficiencyProfile{}, err
	}
	if doc == nil {
		return learning.DefaultProfile(learnerID), nil
	}
	if id, _ := doc["learner_id"].(string); id != "" && id != learnerID {
		s.log.Warn("Profile file belongs to another learner, using defaults", "learner_id", learnerID)
		return learning.DefaultProfile(learnerID), nil
	}
	return decodeProfile(learnerID, doc)
}

func (s *FileStore) Save(ctx context.Context, p learning.ProficiencyProfile) error {
	if strings.TrimSpace(p.LearnerID) == "" {
		return coacherr.Invalid("learner_id", p.LearnerID, "required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	doc["learner_id"] = p.LearnerID
	if p.CurrentLevel.Valid() {
		doc["current_level"] = p.CurrentLevel.String()
	}
	prof, _ := doc["proficiency"].(map[string]any)
	if prof == nil {
		prof = map[string]any{}
	}
	for skill, sl := range p.Skills {
		entry, _ := prof[string(skill)].(map[string]any)
		if entry == nil {
			entry = map[string]any{}
		}
		if sl.CurrentLevel.Valid() {
			entry["current_level"] = sl.CurrentLevel.String()
		}
		if sl.SecureLevel.Valid() {
			entry["secure_level"] = sl.SecureLevel.String()
		}
		prof[string(skill)] = entry
	}
	doc["proficiency"] = prof

	raw, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) read() (map[string]any, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", s.path, err)
	}
	return doc, nil
}

func decodeProfile(learnerID string, doc map[string]any) (learning.ProficiencyProfile, error) {
	p := learning.DefaultProfile(learnerID)
	if raw, ok := doc["current_level"].(string); ok && raw != "" {
		l, err := learning.ParseLevel(raw)
		if err != nil {
			return p, coacherr.Invalid("current_level", raw, err.Error())
		}
		p.CurrentLevel = l
	}
	prof, _ := doc["proficiency"].(map[string]any)
	for key, v := range prof {
		skill, err := learning.ParseSkill(key)
		if err != nil || skill == learning.SkillNone {
			continue
		}
		entry, _ := v.(map[string]any)
		sl := p.Skills[skill]
		for field, dst := range map[string]*learning.Level{
			"current_level": &sl.CurrentLevel,
			"secure_level":  &sl.SecureLevel,
		} {
			raw, ok := entry[field].(string)
			if !ok || raw == "" {
				continue
			}
			l, err := learning.ParseLevel(raw)
			if err != nil {
				return p, coacherr.Invalid(key+"."+field, raw, err.Error())
			}
			*dst = l
		}
		p.Skills[skill] = sl
	}
	return p, nil
}
