package learning

import (
	"fmt"
	"strings"
)

// Level is an ordinal proficiency tier. LevelUnknown sorts below every real tier
// and marks concepts with no tier assigned.
type Level int

const (
	LevelUnknown Level = iota
	LevelA1
	LevelA2
	LevelB1
	LevelB2
	LevelC1
	LevelC2
)

// MaxLevel is the highest tier a learner can be promoted to.
const MaxLevel = LevelC2

var levelNames = map[Level]string{
	LevelA1: "A1",
	LevelA2: "A2",
	LevelB1: "B1",
	LevelB2: "B2",
	LevelC1: "C1",
	LevelC2: "C2",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return ""
}

func (l Level) Valid() bool { return l >= LevelA1 && l <= MaxLevel }

// Next returns the tier above l and false when l is already the top tier.
func (l Level) Next() (Level, bool) {
	if l >= MaxLevel {
		return l, false
	}
	if l < LevelA1 {
		return LevelA1, true
	}
	return l + 1, true
}

func ParseLevel(raw string) (Level, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return LevelUnknown, fmt.Errorf("unknown proficiency level %q", raw)
}
