package scoring

import "fmt"

const (
	defaultGamesPerSet         = 4
	defaultGamePoints          = 4
	defaultTiebreakPoints      = 7
	defaultSuperTiebreakPoints = 10
	defaultSetsToWin           = 2

	// Tiebreak serve changes after every odd point total; ends change every sidePointsInterval points.
	sidePointsInterval = 6
	winMargin          = 2
)

// Rules parameterize the match format. The zero value is not usable; start from DefaultRules.
type Rules struct {
	// GamesPerSet drives both the set-win check and the tiebreak trigger:
	// a set is won at GamesPerSet with the opponent on at most GamesPerSet-2,
	// or at GamesPerSet+1 to GamesPerSet-1; GamesPerSet all starts a tiebreak.
	GamesPerSet         int
	GamePoints          int
	TiebreakPoints      int
	SuperTiebreakPoints int
	SetsToWin           int

	// LenientPhases accepts rally outcomes while the engine still expects a serve.
	LenientPhases bool
}

// DefaultRules is the abbreviated club format: short sets to 4 games, tiebreak at 4-4,
// best of three with a super tiebreak instead of a third set.
func DefaultRules() Rules {
	return Rules{
		GamesPerSet:         defaultGamesPerSet,
		GamePoints:          defaultGamePoints,
		TiebreakPoints:      defaultTiebreakPoints,
		SuperTiebreakPoints: defaultSuperTiebreakPoints,
		SetsToWin:           defaultSetsToWin,
	}
}

// Validate rejects formats the engine cannot score.
func (r Rules) Validate() error {
	switch {
	case r.GamesPerSet < 2:
		return fmt.Errorf("games per set must be at least 2, got %d", r.GamesPerSet)
	case r.GamePoints < 1:
		return fmt.Errorf("game points must be positive, got %d", r.GamePoints)
	case r.TiebreakPoints < 1:
		return fmt.Errorf("tiebreak points must be positive, got %d", r.TiebreakPoints)
	case r.SuperTiebreakPoints < 1:
		return fmt.Errorf("super tiebreak points must be positive, got %d", r.SuperTiebreakPoints)
	case r.SetsToWin < 1:
		return fmt.Errorf("sets to win must be positive, got %d", r.SetsToWin)
	}
	return nil
}

// pointTarget is the number of points that closes the current game or tiebreak.
func (r Rules) pointTarget(s State) int {
	switch {
	case s.IsSuperTiebreak:
		return r.SuperTiebreakPoints
	case s.IsTiebreak:
		return r.TiebreakPoints
	default:
		return r.GamePoints
	}
}

// gameWinner reports the side that closed the current game, if any.
func (r Rules) gameWinner(s State) (Side, bool) {
	return leaderWithMargin(s.Player1.Points, s.Player2.Points, r.pointTarget(s), winMargin)
}

// setWinner applies the regular set-completion rule to the current game count.
func (r Rules) setWinner(s State) (Side, bool) {
	g1, g2 := s.Player1.Games, s.Player2.Games
	n := r.GamesPerSet
	switch {
	case g1 >= n && g2 <= n-2 && g1-g2 >= winMargin:
		return Side1, true
	case g2 >= n && g1 <= n-2 && g2-g1 >= winMargin:
		return Side2, true
	case g1 == n+1 && g2 == n-1:
		return Side1, true
	case g2 == n+1 && g1 == n-1:
		return Side2, true
	}
	return 0, false
}

func (r Rules) startsTiebreak(s State) bool {
	return s.Player1.Games == r.GamesPerSet && s.Player2.Games == r.GamesPerSet && !s.InTiebreak()
}

func (r Rules) matchWon(s State) bool {
	return s.Player1.Sets >= r.SetsToWin || s.Player2.Sets >= r.SetsToWin
}

// decidingSet reports whether both sides are one set away from the match.
func (r Rules) decidingSet(s State) bool {
	return s.Player1.Sets == r.SetsToWin-1 && s.Player2.Sets == r.SetsToWin-1
}

func leaderWithMargin(a, b, target, margin int) (Side, bool) {
	if a >= target && a-b >= margin {
		return Side1, true
	}
	if b >= target && b-a >= margin {
		return Side2, true
	}
	return 0, false
}

// tiebreakServeChanges reports whether serve passes after a tiebreak point brought the total to totalPoints.
func tiebreakServeChanges(totalPoints int) bool {
	return totalPoints%2 == 1
}

// tiebreakSidesChange reports whether players change ends at totalPoints in a tiebreak.
func tiebreakSidesChange(totalPoints int) bool {
	return totalPoints > 0 && totalPoints%sidePointsInterval == 0
}

// regularSidesChange reports whether players change ends after gamesPlayed completed games in a set.
func regularSidesChange(gamesPlayed int) bool {
	return gamesPlayed%2 == 1
}
