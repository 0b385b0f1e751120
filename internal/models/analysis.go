package models

import "encoding/json"

// Breakdown is sent as a JSON object but always displayed in field order.
type Breakdown struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	Projects   float64 `json:"projects"`
}

type AnalysisResult struct {
	Score                  float64   `json:"score"`
	Breakdown              Breakdown `json:"breakdown"`
	OverallAssessment      string    `json:"overall_assessment"`
	MatchedSkills          []string  `json:"matched_skills"`
	MissingSkills          []string  `json:"missing_skills"`
	Strengths              []string  `json:"strengths"`
	ImprovementSuggestions []string  `json:"improvement_suggestions"`
}

// ErrorResponse is the body the scoring service sends with non-2xx statuses.
// Detail is kept raw because validation failures carry a list instead of a string.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}
