package trending

import "token-radar/internal/domain"

// Score weights. Mention volume is the base signal, source breadth weighs
// more, and acceleration weighs most.
const (
	WeightMentions = 2.0
	WeightSources  = 3.0
	WeightVelocity = 5.0
)

// ComputeVelocity returns the growth of the current window against the prior
// adjacent window. With no prior activity the current count itself is the
// velocity, so a cold start still ranks as acceleration.
func ComputeVelocity(current, prior int) float64 {
	if prior == 0 {
		return float64(current)
	}
	return float64(current-prior) / float64(prior)
}

// ComputeScore returns the composite score for a token whose counts and
// velocity are already filled in.
func ComputeScore(t *domain.TrendingToken) float64 {
	return float64(t.MentionCount)*WeightMentions +
		float64(t.UniqueSources)*WeightSources +
		t.Velocity*WeightVelocity
}
