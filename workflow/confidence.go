package workflow

import "github.com/fusionworks/fusioncoder/core"

// Signals are the workflow outcome observations the confidence heuristic
// consumes.
type Signals struct {
	ErrorCount         int
	ContributingAgents int
	Complexity         core.Complexity
	ReviewerApproved   bool
}

// Score computes the heuristic confidence for a workflow outcome. The value
// is always within [0,1].
//
// The formula and its ordering are preserved for behavioral parity: start at
// 0.7, subtract 0.1 per error flooring at zero, then add bonuses (+0.2 low
// complexity, +0.1 reviewer approval, +0.2 for three or more contributing
// agents), clamping to 1 last. The constants are declared policy, not a
// calibrated model.
func Score(s Signals) float64 {
	score := 0.7

	score -= 0.1 * float64(s.ErrorCount)
	if score < 0 {
		score = 0
	}

	if s.Complexity == core.ComplexityLow {
		score += 0.2
	}
	if s.ReviewerApproved {
		score += 0.1
	}
	if s.ContributingAgents >= 3 {
		score += 0.2
	}

	if score > 1 {
		score = 1
	}
	return score
}
