package services

import (
	"fmt"
	"math"

	"akash-aiml/resume-score-analyzer/internal/models"
)

const (
	NoMatchedSkillsText = "No specific matches found"
	NoMissingSkillsText = "No critical gaps found"
)

type ScoreBand string

const (
	BandHigh ScoreBand = "high"
	BandMid  ScoreBand = "mid"
	BandLow  ScoreBand = "low"
)

// BandStyle is the color pair for a band: a text color for small figures and
// a gradient for the headline score.
type BandStyle struct {
	TextColor string
	Gradient  string
}

var bandStyles = map[ScoreBand]BandStyle{
	BandHigh: {TextColor: "text-green-600", Gradient: "from-green-500 to-green-600"},
	BandMid:  {TextColor: "text-yellow-600", Gradient: "from-yellow-500 to-yellow-600"},
	BandLow:  {TextColor: "text-red-600", Gradient: "from-red-500 to-red-600"},
}

func BandFor(score float64) ScoreBand {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMid
	default:
		return BandLow
	}
}

func (b ScoreBand) Style() BandStyle {
	return bandStyles[b]
}

type BreakdownCard struct {
	Category string
	Value    float64
	Display  string
	Band     ScoreBand
	Style    BandStyle
}

type TagList struct {
	Tags     []string
	Fallback string
}

func (t TagList) Empty() bool {
	return len(t.Tags) == 0
}

type NumberedItem struct {
	Index int
	Text  string
}

func (n NumberedItem) Label() string {
	return fmt.Sprintf("%d. %s", n.Index, n.Text)
}

type ResultView struct {
	Score             string
	Band              ScoreBand
	Style             BandStyle
	Breakdown         []BreakdownCard
	OverallAssessment string
	MatchedSkills     TagList
	MissingSkills     TagList
	Strengths         []string
	Suggestions       []NumberedItem
}

func (v *ResultView) ShowStrengths() bool {
	return len(v.Strengths) > 0
}

func (v *ResultView) ShowSuggestions() bool {
	return len(v.Suggestions) > 0
}

// RenderResult maps an analysis result to what the results section shows.
// It returns nil for a nil result.
func RenderResult(r *models.AnalysisResult) *ResultView {
	if r == nil {
		return nil
	}

	band := BandFor(r.Score)
	view := &ResultView{
		Score:             formatPercent(r.Score),
		Band:              band,
		Style:             band.Style(),
		OverallAssessment: r.OverallAssessment,
		MatchedSkills:     TagList{Tags: r.MatchedSkills},
		MissingSkills:     TagList{Tags: r.MissingSkills},
		Strengths:         r.Strengths,
	}

	for _, c := range []struct {
		name  string
		value float64
	}{
		{"skills", r.Breakdown.Skills},
		{"experience", r.Breakdown.Experience},
		{"education", r.Breakdown.Education},
		{"projects", r.Breakdown.Projects},
	} {
		cardBand := BandFor(c.value)
		view.Breakdown = append(view.Breakdown, BreakdownCard{
			Category: c.name,
			Value:    c.value,
			Display:  formatPercent(c.value),
			Band:     cardBand,
			Style:    cardBand.Style(),
		})
	}

	if view.MatchedSkills.Empty() {
		view.MatchedSkills.Fallback = NoMatchedSkillsText
	}
	if view.MissingSkills.Empty() {
		view.MissingSkills.Fallback = NoMissingSkillsText
	}

	for i, s := range r.ImprovementSuggestions {
		view.Suggestions = append(view.Suggestions, NumberedItem{Index: i + 1, Text: s})
	}

	return view
}

func formatPercent(v float64) string {
	// Halves round away from zero, not to even.
	return fmt.Sprintf("%.0f%%", math.Round(v))
}
