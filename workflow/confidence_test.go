package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fusionworks/fusioncoder/core"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		s    Signals
		want float64
	}{
		{
			name: "baseline medium complexity",
			s:    Signals{Complexity: core.ComplexityMedium},
			want: 0.7,
		},
		{
			name: "low complexity bonus",
			s:    Signals{Complexity: core.ComplexityLow},
			want: 0.9,
		},
		{
			name: "one error",
			s:    Signals{ErrorCount: 1, Complexity: core.ComplexityMedium},
			want: 0.6,
		},
		{
			name: "errors floor at zero before bonuses",
			s:    Signals{ErrorCount: 10, Complexity: core.ComplexityLow},
			want: 0.2,
		},
		{
			name: "reviewer approval",
			s:    Signals{Complexity: core.ComplexityHigh, ReviewerApproved: true},
			want: 0.8,
		},
		{
			name: "three contributing agents",
			s:    Signals{ContributingAgents: 3, Complexity: core.ComplexityHigh},
			want: 0.9,
		},
		{
			name: "two agents earn no bonus",
			s:    Signals{ContributingAgents: 2, Complexity: core.ComplexityHigh},
			want: 0.7,
		},
		{
			name: "all bonuses clamp to one",
			s:    Signals{ContributingAgents: 5, Complexity: core.ComplexityLow, ReviewerApproved: true},
			want: 1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.s), 1e-9)
		})
	}
}

func TestScoreAlwaysWithinBounds(t *testing.T) {
	for errs := 0; errs <= 12; errs++ {
		for agents := 0; agents <= 6; agents++ {
			for _, c := range []core.Complexity{core.ComplexityLow, core.ComplexityMedium, core.ComplexityHigh} {
				for _, approved := range []bool{false, true} {
					got := Score(Signals{
						ErrorCount:         errs,
						ContributingAgents: agents,
						Complexity:         c,
						ReviewerApproved:   approved,
					})
					assert.GreaterOrEqual(t, got, 0.0)
					assert.LessOrEqual(t, got, 1.0)
				}
			}
		}
	}
}
