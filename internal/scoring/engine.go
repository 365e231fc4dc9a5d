package scoring

import (
	"fmt"
	"slices"
	"time"
)

// EventKind is a semantic umpiring input.
type EventKind string

const (
	EventAce           EventKind = "ace"
	EventFault         EventKind = "fault"
	EventBallInPlay    EventKind = "ball_in_play"
	EventWinner        EventKind = "winner"
	EventForcedError   EventKind = "forced_error"
	EventUnforcedError EventKind = "unforced_error"
	EventSwapSides     EventKind = "swap_sides"
)

// Event is one referee input. Side names the acting player for winners and errors;
// serve events act for the current server and ignore it.
type Event struct {
	Kind EventKind `json:"type"`
	Side Side      `json:"side,omitempty"`
	// Label replaces the side name in the undo description when set.
	Label string `json:"-"`
}

// Engine applies umpiring events to score states. It holds no match state and is safe for concurrent use.
type Engine struct {
	rules Rules
	now   func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for match start, finish and undo records.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine constructs an Engine for the given rules.
func NewEngine(rules Rules, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{rules: rules, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Rules returns the format the engine scores.
func (e *Engine) Rules() Rules {
	return e.rules
}

// SetFirstServer starts the match with side serving first. It is not recorded for undo.
func (e *Engine) SetFirstServer(s State, side Side) (State, error) {
	if !side.Valid() {
		return s, ErrInvalidSide
	}
	if s.IsMatchFinished {
		return s, ErrMatchAlreadyFinished
	}
	if s.Phase != PhaseServerSelection {
		return s, fmt.Errorf("%w: first server already chosen", ErrInvalidEventForPhase)
	}
	next := s.Clone()
	next.IsPlayer1Serving = side == Side1
	next.IsFirstServe = true
	next.StartedAt = e.now()
	next.Phase = PhaseServe
	return next, nil
}

// Apply runs one event against s and returns the fully resolved next state together with
// the effects it produced. On error s is returned unchanged.
func (e *Engine) Apply(s State, ev Event) (State, []Change, error) {
	if err := e.admit(s, ev); err != nil {
		return s, nil, err
	}

	t := &transition{rules: e.rules, s: recordSnapshot(s, ev.Kind, e.actor(s, ev), describe(s, ev), e.now())}
	switch ev.Kind {
	case EventAce:
		t.ace()
	case EventFault:
		t.fault()
	case EventBallInPlay:
		t.ballInPlay()
	case EventWinner:
		t.winner(ev.Side)
	case EventForcedError:
		t.forcedError(ev.Side)
	case EventUnforcedError:
		t.unforcedError(ev.Side)
	case EventSwapSides:
		t.swapSides()
	}
	if t.s.IsMatchFinished {
		t.s.FinishedAt = e.now()
	}

	if err := e.rules.validate(t.s); err != nil {
		return s, nil, fmt.Errorf("%w after %s: %v", ErrInconsistentState, ev.Kind, err)
	}
	return t.s, t.changes, nil
}

// Undo reverts the most recent recorded event and returns its description.
func (e *Engine) Undo(s State) (State, string, error) {
	prev, snap, err := restore(s)
	if err != nil {
		return s, "", err
	}
	return prev, snap.Description, nil
}

func (e *Engine) Ace(s State) (State, []Change, error) {
	return e.Apply(s, Event{Kind: EventAce})
}

func (e *Engine) Fault(s State) (State, []Change, error) {
	return e.Apply(s, Event{Kind: EventFault})
}

func (e *Engine) BallInPlay(s State) (State, []Change, error) {
	return e.Apply(s, Event{Kind: EventBallInPlay})
}

func (e *Engine) Winner(s State, side Side) (State, []Change, error) {
	return e.Apply(s, Event{Kind: EventWinner, Side: side})
}

func (e *Engine) ForcedError(s State, side Side) (State, []Change, error) {
	return e.Apply(s, Event{Kind: EventForcedError, Side: side})
}

func (e *Engine) UnforcedError(s State, side Side) (State, []Change, error) {
	return e.Apply(s, Event{Kind: EventUnforcedError, Side: side})
}

func (e *Engine) SwapSides(s State) (State, []Change, error) {
	return e.Apply(s, Event{Kind: EventSwapSides})
}

// admit checks that ev may be applied to s without touching it.
func (e *Engine) admit(s State, ev Event) error {
	if s.IsMatchFinished {
		return ErrMatchAlreadyFinished
	}
	if s.Phase == PhaseServerSelection {
		return phaseError(ev.Kind, s.Phase)
	}
	switch ev.Kind {
	case EventAce, EventFault, EventBallInPlay:
		if s.Phase != PhaseServe {
			return phaseError(ev.Kind, s.Phase)
		}
	case EventWinner, EventForcedError, EventUnforcedError:
		if !ev.Side.Valid() {
			return ErrInvalidSide
		}
		if s.Phase != PhaseRally && !(e.rules.LenientPhases && s.Phase == PhaseServe) {
			return phaseError(ev.Kind, s.Phase)
		}
	case EventSwapSides:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	return nil
}

func (e *Engine) actor(s State, ev Event) Side {
	switch ev.Kind {
	case EventAce, EventFault, EventBallInPlay:
		return s.Server()
	case EventSwapSides:
		return 0
	default:
		return ev.Side
	}
}

func describe(s State, ev Event) string {
	name := ev.Label
	if name == "" {
		switch ev.Kind {
		case EventAce, EventFault, EventBallInPlay:
			name = s.Server().String()
		default:
			name = ev.Side.String()
		}
	}
	switch ev.Kind {
	case EventAce:
		return "Ace - " + name
	case EventFault:
		if s.IsFirstServe {
			return "Fault - first serve"
		}
		return "Double fault - " + name
	case EventBallInPlay:
		if s.IsFirstServe {
			return "Ball in play - first serve"
		}
		return "Ball in play - second serve"
	case EventWinner:
		return "Winner - " + name
	case EventForcedError:
		return "Forced error - " + name
	case EventUnforcedError:
		return "Unforced error - " + name
	case EventSwapSides:
		return "Swap sides"
	}
	return string(ev.Kind)
}

// transition mutates a private copy of the state while one event resolves.
type transition struct {
	rules   Rules
	s       State
	changes []Change
}

func (t *transition) emit(kind ChangeKind, side Side) {
	t.changes = append(t.changes, Change{Kind: kind, Side: side})
}

func (t *transition) ace() {
	server := t.s.Server()
	st := &t.s.side(server).Stats
	st.Aces++
	st.FirstServesIn++
	st.FirstServesTotal++
	t.s.IsFirstServe = true
	t.awardPoint(server)
}

func (t *transition) fault() {
	server := t.s.Server()
	st := &t.s.side(server).Stats
	if t.s.IsFirstServe {
		st.FirstServesTotal++
		t.s.IsFirstServe = false
		return
	}
	st.DoubleFaults++
	st.SecondServesTotal++
	t.s.IsFirstServe = true
	t.awardPoint(server.Opponent())
}

func (t *transition) ballInPlay() {
	st := &t.s.side(t.s.Server()).Stats
	if t.s.IsFirstServe {
		st.FirstServesIn++
		st.FirstServesTotal++
	} else {
		st.SecondServesIn++
		st.SecondServesTotal++
	}
	t.s.IsFirstServe = true
	t.s.Phase = PhaseRally
}

func (t *transition) winner(side Side) {
	t.s.side(side).Stats.Winners++
	t.awardPoint(side)
}

func (t *transition) forcedError(side Side) {
	t.s.side(side).Stats.ForcedErrors++
	t.awardPoint(side.Opponent())
}

func (t *transition) unforcedError(side Side) {
	t.s.side(side).Stats.UnforcedErrors++
	t.awardPoint(side.Opponent())
}

func (t *transition) swapSides() {
	t.s.SidesSwapped = !t.s.SidesSwapped
	t.emit(ChangeSides, 0)
}

// awardPoint is the single path every point takes.
func (t *transition) awardPoint(side Side) {
	t.s.side(side).Points++
	t.s.Phase = PhaseServe
	t.emit(ChangePoint, side)

	if t.s.InTiebreak() {
		total := t.s.Player1.Points + t.s.Player2.Points
		if tiebreakServeChanges(total) {
			t.flipServe()
		}
		if tiebreakSidesChange(total) {
			t.flipSides()
		}
	}
	t.checkGame()
}

func (t *transition) checkGame() {
	winner, ok := t.rules.gameWinner(t.s)
	if !ok {
		return
	}
	t.s.Player1.Points = 0
	t.s.Player2.Points = 0

	if t.s.InTiebreak() {
		t.closeTiebreak(winner)
		return
	}

	t.s.side(winner).Games++
	t.s.TotalGamesPlayed++
	t.emit(ChangeGame, winner)
	if regularSidesChange(t.s.TotalGamesPlayed) {
		t.flipSides()
	}
	t.flipServe()

	if setWinner, won := t.rules.setWinner(t.s); won {
		t.closeSet(setWinner)
		if t.s.IsMatchFinished {
			return
		}
		t.s.Player1.Games = 0
		t.s.Player2.Games = 0
		t.newSet()
		return
	}

	if t.rules.startsTiebreak(t.s) {
		t.s.IsTiebreak = true
		t.emit(ChangeTiebreakStart, 0)
	}
}

// closeTiebreak settles a set decided by a tiebreak or super tiebreak.
func (t *transition) closeTiebreak(winner Side) {
	t.s.side(winner).Games++
	t.emit(ChangeGame, winner)
	t.closeSet(winner)
	t.s.Player1.Games = 0
	t.s.Player2.Games = 0
	t.s.IsTiebreak = false
	t.s.IsSuperTiebreak = false
	if t.s.IsMatchFinished {
		return
	}
	t.flipServe()
	t.newSet()
}

// closeSet credits the set, records its final games and ends the match when it is decided.
func (t *transition) closeSet(winner Side) {
	t.s.side(winner).Sets++
	t.s.SetsHistory = append(slices.Clip(t.s.SetsHistory), SetScore{
		SetNumber:    len(t.s.SetsHistory) + 1,
		Player1Games: t.s.Player1.Games,
		Player2Games: t.s.Player2.Games,
	})
	t.emit(ChangeSet, winner)

	if t.rules.matchWon(t.s) {
		t.s.IsMatchFinished = true
		t.s.Phase = PhaseMatchFinished
		t.emit(ChangeMatchEnd, winner)
	}
}

// newSet performs the housekeeping between two sets of an unfinished match.
func (t *transition) newSet() {
	t.s.TotalGamesPlayed = 0
	t.flipSides()
	if t.rules.decidingSet(t.s) {
		t.s.IsSuperTiebreak = true
		t.emit(ChangeSuperTiebreakStart, 0)
	}
}

func (t *transition) flipServe() {
	t.s.IsPlayer1Serving = !t.s.IsPlayer1Serving
	t.emit(ChangeServe, t.s.Server())
}

func (t *transition) flipSides() {
	t.s.SidesSwapped = !t.s.SidesSwapped
	t.emit(ChangeSides, 0)
}
