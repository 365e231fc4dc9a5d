package scoring

// ChangeKind names one observable effect of a transition.
type ChangeKind string

const (
	ChangePoint              ChangeKind = "point"
	ChangeServe              ChangeKind = "serve_change"
	ChangeSides              ChangeKind = "side_change"
	ChangeGame               ChangeKind = "game"
	ChangeSet                ChangeKind = "set"
	ChangeTiebreakStart      ChangeKind = "tiebreak_start"
	ChangeSuperTiebreakStart ChangeKind = "super_tiebreak_start"
	ChangeMatchEnd           ChangeKind = "match_end"
)

// Change is one effect of a transition, in the order it happened.
// Side is the side that won the point, game or set, or zero for effects that belong to nobody.
type Change struct {
	Kind ChangeKind `json:"kind"`
	Side Side       `json:"side,omitempty"`
}
