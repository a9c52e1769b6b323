package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Question kinds. The payload of a question depends on its kind, so the two
// variants are modelled as a tagged union validated at the ingestion boundary.
const (
	QuestionKindMCQ    = "mcq"
	QuestionKindCoding = "coding"
)

// DefaultQuestionPoints is the point value assigned when none is provided.
const DefaultQuestionPoints = 10

// Test is an assessment composed of ordered questions of one kind.
type Test struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Kind        string     `gorm:"size:16;not null" json:"kind"`
	Questions   []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Question is one entry of a test. Coding questions reference a problem;
// MCQ questions carry their options inline.
type Question struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TestID        uint           `gorm:"not null;index" json:"test_id"`
	Position      int            `gorm:"not null" json:"position"`
	Kind          string         `gorm:"size:16;not null" json:"kind"`
	Points        int            `gorm:"default:10" json:"points"`
	ProblemID     *uint          `json:"problem_id,omitempty"`
	Text          string         `gorm:"type:text" json:"text,omitempty"`
	Options       datatypes.JSON `json:"options,omitempty"`
	CorrectOption int            `gorm:"default:0" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
}

// OptionsSlice decodes the MCQ options list.
func (q Question) OptionsSlice() ([]string, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}

	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil, err
	}
	return options, nil
}
