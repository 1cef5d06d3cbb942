package oracle

// Kind classifies an Evaluation. The total order over Evaluation is
// Loss < Draw < Scored < Win, independent of Score/Mate magnitude.
type Kind uint8

const (
	Loss Kind = iota
	Draw
	Scored
	Win
)

// Evaluation is the Oracle's verdict on one position, from the perspective
// of the side to move in that position.
type Evaluation struct {
	Kind  Kind
	Score int32 // meaningful only when Kind == Scored
	Mate  int32 // plies to mate, meaningful only when Kind is Win or Loss
}

// Invert flips an Evaluation to the opposing side's perspective: Win and
// Loss swap (and the mate distance grows by one ply, since it takes one
// more move to get there from the parent), Score negates, Draw is
// unchanged.
func (e Evaluation) Invert() Evaluation {
	switch e.Kind {
	case Win:
		return Evaluation{Kind: Loss, Mate: e.Mate + 1}
	case Loss:
		return Evaluation{Kind: Win, Mate: e.Mate + 1}
	case Scored:
		return Evaluation{Kind: Scored, Score: -e.Score}
	default: // Draw
		return e
	}
}

// mateHintMagnitude is an arbitrary constant larger than any realistic
// centipawn score, used only to fold a mate distance into CompactScore's
// single opaque ordering hint — never compared against Score directly
// anywhere else, since Kind alone (not magnitude) determines the real
// Win/Loss/Scored ordering.
const mateHintMagnitude = 1_000_000

// CompactScore folds the Evaluation into a single int32 scheduling hint —
// spec.md §4.4's ExpandItem.parent_score_hint. It is opaque metadata used
// only to break ties in alternative scheduling policies; no core algorithm
// reads it back into an Evaluation.
func (e Evaluation) CompactScore() int32 {
	switch e.Kind {
	case Win:
		return mateHintMagnitude - e.Mate
	case Loss:
		return -mateHintMagnitude + e.Mate
	case Scored:
		return e.Score
	default: // Draw
		return 0
	}
}

// Less reports whether e is strictly worse than o for the side both are
// expressed from the perspective of: Loss < Draw < Scored < Win, and within
// Win a closer mate is better (smaller Mate), within Loss a closer mate is
// worse (smaller Mate is worse, i.e. Less), within Scored a lower Score is
// worse.
func (e Evaluation) Less(o Evaluation) bool {
	if e.Kind != o.Kind {
		return e.Kind < o.Kind
	}
	switch e.Kind {
	case Win:
		return e.Mate > o.Mate // slower mate is worse
	case Loss:
		return e.Mate < o.Mate // faster loss is worse
	case Scored:
		return e.Score < o.Score
	default:
		return false
	}
}
