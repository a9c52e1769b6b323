package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Problem represents a coding exercise with its hidden and visible test cases.
// Problems are read-only to the grading core; the surrounding CRUD layer owns
// their lifecycle.
type Problem struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Title      string         `gorm:"size:255;not null" json:"title"`
	Statement  string         `gorm:"type:text;not null" json:"statement"`
	Difficulty string         `gorm:"size:32" json:"difficulty"`
	Points     int            `gorm:"default:10" json:"points"`
	Tags       string         `gorm:"type:text" json:"tags"`
	TestCases  []ProblemCase  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"test_cases"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TagsSlice returns the tags as a slice of strings.
func (p Problem) TagsSlice() []string {
	if p.Tags == "" {
		return nil
	}

	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// ProblemCase is one input/expected-output pair attached to a problem.
// Input and expected output are language-agnostic structured values stored
// as JSON.
type ProblemCase struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProblemID   uint           `gorm:"not null;index" json:"problem_id"`
	Position    int            `gorm:"not null" json:"position"`
	Input       datatypes.JSON `json:"input"`
	Expected    datatypes.JSON `gorm:"column:expected_output" json:"expected_output"`
	Explanation string         `gorm:"type:text" json:"explanation"`
	CreatedAt   time.Time      `json:"created_at"`
}

// DecodedInput returns the structured input value.
func (c ProblemCase) DecodedInput() (any, error) {
	return decodeJSON(c.Input)
}

// DecodedExpected returns the structured expected output value.
func (c ProblemCase) DecodedExpected() (any, error) {
	return decodeJSON(c.Expected)
}

func decodeJSON(payload datatypes.JSON) (any, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
