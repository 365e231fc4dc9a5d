package scoring

import "strconv"

var regularPointNames = [...]string{"0", "15", "30", "40"}

// PointsDisplay renders the current point count of side as the scoreboard shows it.
func (s State) PointsDisplay(side Side) string {
	own := s.Side(side).Points
	other := s.Side(side.Opponent()).Points
	return PointsDisplay(own, other, s.InTiebreak())
}

// PointsDisplay renders raw point counts in tennis notation, or as plain numbers in a tiebreak.
func PointsDisplay(points, opponentPoints int, tiebreak bool) string {
	if tiebreak {
		return strconv.Itoa(points)
	}
	// Past deuce only the leader changes notation; 4-3 is already advantage.
	if points >= 3 && opponentPoints >= 3 {
		if points > opponentPoints {
			return "ADV"
		}
		return "40"
	}
	if points >= 3 {
		return "40"
	}
	if points < 0 {
		return "0"
	}
	return regularPointNames[points]
}
