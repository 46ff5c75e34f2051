package constants

import (
	"strings"
)

type Grade string

const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeDPlus  Grade = "D+"
	GradeD      Grade = "D"
	GradeDMinus Grade = "D-"
	GradeF      Grade = "F"
)

// allGrades is ordered best to worst.
var allGrades = []Grade{
	GradeAPlus, GradeA, GradeAMinus,
	GradeBPlus, GradeB, GradeBMinus,
	GradeCPlus, GradeC, GradeCMinus,
	GradeDPlus, GradeD, GradeDMinus,
	GradeF,
}

func AllGrades() []Grade {
	out := make([]Grade, len(allGrades))
	copy(out, allGrades)
	return out
}

func GradesAsStringSlice() []string {
	result := make([]string, len(allGrades))
	for i, g := range allGrades {
		result[i] = string(g)
	}
	return result
}

// CanonicalizeGrade trims and upper-cases input and reports whether it is a known grade.
// Spelled-out modifiers ("B plus", "a minus") are folded into their symbols.
func CanonicalizeGrade(input string) (Grade, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	normalized = strings.ReplaceAll(normalized, " PLUS", "+")
	normalized = strings.ReplaceAll(normalized, " MINUS", "-")
	normalized = strings.ReplaceAll(normalized, " ", "")

	for _, g := range allGrades {
		if normalized == string(g) {
			return g, true
		}
	}
	return Grade(normalized), false
}
