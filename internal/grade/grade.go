// Package grade maps letter grades to the progress fraction and color the UI renders.
package grade

import (
	"strings"

	"github.com/joseph-ayodele/portfolio-grader/constants"
)

// Colors used for the grade arc.
const (
	ColorGreen   = "#22c55e"
	ColorAmber   = "#eab308"
	ColorOrange  = "#f97316"
	ColorRed     = "#ef4444"
	ColorNeutral = "#64748b"
)

var progress = map[constants.Grade]float64{
	constants.GradeAPlus:  1.0,
	constants.GradeA:      0.95,
	constants.GradeAMinus: 0.9,
	constants.GradeBPlus:  0.85,
	constants.GradeB:      0.8,
	constants.GradeBMinus: 0.75,
	constants.GradeCPlus:  0.7,
	constants.GradeC:      0.65,
	constants.GradeCMinus: 0.6,
	constants.GradeDPlus:  0.55,
	constants.GradeD:      0.5,
	constants.GradeDMinus: 0.45,
	constants.GradeF:      0,
}

// Progress returns the arc fill for g in [0,1]. Anything not in the table is 0.
func Progress(g string) float64 {
	return progress[constants.Grade(g)]
}

// Color returns the arc color for g, or ColorNeutral when g is empty or unrecognized.
func Color(g string) string {
	if !Valid(g) {
		return ColorNeutral
	}
	switch {
	case strings.HasPrefix(g, "A"):
		return ColorGreen
	case strings.HasPrefix(g, "B"):
		return ColorAmber
	case strings.HasPrefix(g, "C"):
		return ColorOrange
	default:
		return ColorRed
	}
}

func Valid(g string) bool {
	_, ok := progress[constants.Grade(g)]
	return ok
}

// Step is one row of the grade scale.
type Step struct {
	Grade    string  `json:"grade"`
	Progress float64 `json:"progress"`
	Color    string  `json:"color"`
}

// Scale returns every grade best to worst with its progress and color.
func Scale() []Step {
	grades := constants.AllGrades()
	out := make([]Step, 0, len(grades))
	for _, g := range grades {
		out = append(out, Step{Grade: string(g), Progress: Progress(string(g)), Color: Color(string(g))})
	}
	return out
}
