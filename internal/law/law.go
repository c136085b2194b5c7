// Package law builds licence-plan scaffolds for visiting anglers.
package law

import "strings"

// Plan is a step-by-step licence plan for the CLI context scaffold.
type Plan struct {
	Steps []string `json:"steps"`
	Notes []string `json:"notes"`
}

// BeginnerPlan returns the licence steps for a beginner staying stayDays in
// the given canton. Ticino waives the SaNa requirement for short tourist
// stays; everywhere else the SaNa certificate comes first.
func BeginnerPlan(canton string, stayDays int) Plan {
	var plan Plan
	c := strings.ToLower(strings.TrimSpace(canton))

	if stayDays <= 7 && (c == "ti" || c == "ticino") {
		plan.Steps = append(plan.Steps,
			"Short stay in Ticino: check tourist licence requirements with local authorities.")
	} else {
		plan.Steps = append(plan.Steps,
			"Book the SaNa course/exam and obtain the SaNa certificate.",
			"Apply for your canton's fishing licence per local process.")
	}

	plan.Notes = []string{
		"Carry required ID and documents per canton.",
		"Confirm waterbody-specific rules and closed seasons.",
	}
	return plan
}
