package domain

// TrendingToken is one ranked entry produced by a detection cycle.
// MentionCount and UniqueSources come from the store aggregate; Velocity and
// Score are filled in by the trending engine.
type TrendingToken struct {
	Contract      string  // canonical contract address
	Chain         Chain   // chain the contract lives on
	MentionCount  int     // mentions inside the current window
	UniqueSources int     // distinct sources inside the current window
	Velocity      float64 // growth vs the prior adjacent window
	Score         float64 // composite ranking score
}
