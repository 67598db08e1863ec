package domain

import "github.com/yungbote/strandcoach/internal/domain/learning"

type Card = learning.Card
type ReviewEvent = learning.ReviewEvent
type SessionRecord = learning.SessionRecord
type Exercise = learning.Exercise
type ConceptNode = learning.ConceptNode
type PrerequisiteEdge = learning.PrerequisiteEdge
type ProficiencyProfile = learning.ProficiencyProfile
type SkillLevels = learning.SkillLevels

type Category = learning.Category
type CategoryVector = learning.CategoryVector
type Skill = learning.Skill
type Level = learning.Level
type ConceptType = learning.ConceptType
type MasteryStatus = learning.MasteryStatus
type SessionState = learning.SessionState
