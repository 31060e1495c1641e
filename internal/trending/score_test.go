package trending

import (
	"testing"

	"token-radar/internal/domain"
)

func TestComputeVelocity(t *testing.T) {
	tests := []struct {
		name    string
		current int
		prior   int
		want    float64
	}{
		{"no prior activity", 4, 0, 4.0},
		{"doubled", 4, 2, 1.0},
		{"flat", 3, 3, 0.0},
		{"declining", 2, 4, -0.5},
		{"collapsed", 0, 5, -1.0},
		{"cold start single mention", 1, 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVelocity(tt.current, tt.prior)
			if got != tt.want {
				t.Errorf("ComputeVelocity(%d, %d) = %f, want %f", tt.current, tt.prior, got, tt.want)
			}
		})
	}
}

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name  string
		token domain.TrendingToken
		want  float64
	}{
		{
			name:  "steady grower",
			token: domain.TrendingToken{MentionCount: 4, UniqueSources: 3, Velocity: 1.0},
			want:  22.0, // 4*2 + 3*3 + 1*5
		},
		{
			name:  "cold start",
			token: domain.TrendingToken{MentionCount: 3, UniqueSources: 2, Velocity: 3.0},
			want:  27.0, // 3*2 + 2*3 + 3*5
		},
		{
			name:  "negative velocity drags the score",
			token: domain.TrendingToken{MentionCount: 4, UniqueSources: 2, Velocity: -0.5},
			want:  11.5, // 4*2 + 2*3 - 0.5*5
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScore(&tt.token)
			if got != tt.want {
				t.Errorf("ComputeScore(%+v) = %f, want %f", tt.token, got, tt.want)
			}
		})
	}
}

func TestComputeScore_VelocityDominatesSourceBreadth(t *testing.T) {
	// A token with fewer mentions and sources outranks a broader one when its
	// growth is steep enough.
	narrow := &domain.TrendingToken{MentionCount: 3, UniqueSources: 2, Velocity: 3.0}
	broad := &domain.TrendingToken{MentionCount: 4, UniqueSources: 3, Velocity: 1.0}

	if ComputeScore(narrow) <= ComputeScore(broad) {
		t.Errorf("Expected narrow fast grower (%f) to outrank broad steady one (%f)",
			ComputeScore(narrow), ComputeScore(broad))
	}
}
