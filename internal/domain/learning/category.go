package learning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Category is one of the four pedagogical strands a session's time is split across.
type Category string

const (
	CategoryComprehensionInput  Category = "comprehension_input"
	CategoryCommunicativeOutput Category = "communicative_output"
	CategoryExplicitStudy       Category = "explicit_study"
	CategoryFluencyAutomaticity Category = "fluency_automaticity"
)

// NumCategories is the length of every CategoryVector.
const NumCategories = 4

// Categories lists the strands in their canonical vector order.
var Categories = [NumCategories]Category{
	CategoryComprehensionInput,
	CategoryCommunicativeOutput,
	CategoryExplicitStudy,
	CategoryFluencyAutomaticity,
}

// Index returns the position of c in Categories, or -1.
func (c Category) Index() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return -1
}

func (c Category) Valid() bool { return c.Index() >= 0 }

// ParseCategory accepts the canonical names and their hyphenated forms.
func ParseCategory(raw string) (Category, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

// CategoryVector holds one value per category in canonical order.
type CategoryVector [NumCategories]float64

func (v CategoryVector) Get(c Category) float64 {
	i := c.Index()
	if i < 0 {
		return 0
	}
	return v[i]
}

func (v *CategoryVector) Set(c Category, x float64) {
	if i := c.Index(); i >= 0 {
		v[i] = x
	}
}

func (v *CategoryVector) Add(c Category, x float64) {
	if i := c.Index(); i >= 0 {
		v[i] += x
	}
}

func (v CategoryVector) Sum() float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}

// Shares returns v scaled to sum to 1. A zero vector yields the uniform split.
func (v CategoryVector) Shares() CategoryVector {
	total := v.Sum()
	var out CategoryVector
	for i := range out {
		if total <= 0 {
			out[i] = 1.0 / NumCategories
			continue
		}
		out[i] = v[i] / total
	}
	return out
}

// MarshalJSON writes an object keyed by category name in canonical order, so
// equal vectors always serialize to identical bytes.
func (v CategoryVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(string(c)))
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(v[i], 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (v *CategoryVector) UnmarshalJSON(data []byte) error {
	m := map[string]float64{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out CategoryVector
	for k, x := range m {
		c, err := ParseCategory(k)
		if err != nil {
			return err
		}
		out.Set(c, x)
	}
	*v = out
	return nil
}

// Skill is the language skill a card exercises. The zero value means unset.
type Skill string

const (
	SkillNone      Skill = ""
	SkillReading   Skill = "reading"
	SkillListening Skill = "listening"
	SkillSpeaking  Skill = "speaking"
	SkillWriting   Skill = "writing"
)

var Skills = []Skill{SkillReading, SkillListening, SkillSpeaking, SkillWriting}

func ParseSkill(raw string) (Skill, error) {
	s := Skill(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case SkillNone, SkillReading, SkillListening, SkillSpeaking, SkillWriting:
		return s, nil
	}
	return "", fmt.Errorf("unknown skill %q", raw)
}
