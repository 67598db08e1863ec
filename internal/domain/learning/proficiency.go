package learning

// SkillLevels is the per-skill pair tracked by the proficiency profile.
type SkillLevels struct {
	CurrentLevel Level
	SecureLevel  Level
}

// ProficiencyProfile is passed explicitly into every planning and promotion call.
type ProficiencyProfile struct {
	LearnerID    string
	CurrentLevel Level
	Skills       map[Skill]SkillLevels
}

// DefaultProfile is used when a learner has no stored profile.
func DefaultProfile(learnerID string) ProficiencyProfile {
	p := ProficiencyProfile{
		LearnerID:    learnerID,
		CurrentLevel: LevelA1,
		Skills:       map[Skill]SkillLevels{},
	}
	for _, s := range Skills {
		p.Skills[s] = SkillLevels{CurrentLevel: LevelA1, SecureLevel: LevelA1}
	}
	return p
}

// SecureLevel falls back to A1 for skills the profile does not mention.
func (p ProficiencyProfile) SecureLevel(skill Skill) Level {
	if sl, ok := p.Skills[skill]; ok && sl.SecureLevel.Valid() {
		return sl.SecureLevel
	}
	return LevelA1
}

// MaxFrontierLevel is the overall tier new material may be drawn from.
func (p ProficiencyProfile) MaxFrontierLevel() Level {
	if p.CurrentLevel.Valid() {
		return p.CurrentLevel
	}
	return LevelA1
}
