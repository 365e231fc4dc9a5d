package scoring

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants that hold under any rules.
func (s State) Validate() error {
	var errs []error
	for _, side := range []Side{Side1, Side2} {
		sc := s.Side(side)
		if sc.Points < 0 || sc.Games < 0 || sc.Sets < 0 {
			errs = append(errs, fmt.Errorf("%s has negative score %d/%d/%d", side, sc.Points, sc.Games, sc.Sets))
		}
		if st := sc.Stats; st.FirstServesIn > st.FirstServesTotal || st.SecondServesIn > st.SecondServesTotal {
			errs = append(errs, fmt.Errorf("%s has more serves in than served", side))
		}
	}
	if s.IsTiebreak && s.IsSuperTiebreak {
		errs = append(errs, errors.New("tiebreak and super tiebreak both active"))
	}
	if got, want := len(s.SetsHistory), s.Player1.Sets+s.Player2.Sets; got != want {
		errs = append(errs, fmt.Errorf("sets history has %d entries for %d completed sets", got, want))
	}
	for i, set := range s.SetsHistory {
		if set.SetNumber != i+1 {
			errs = append(errs, fmt.Errorf("set %d recorded as number %d", i+1, set.SetNumber))
		}
	}
	if s.IsMatchFinished {
		if _, ok := s.Winner(); !ok {
			errs = append(errs, errors.New("finished match has no winner"))
		}
		if s.Phase != PhaseMatchFinished {
			errs = append(errs, fmt.Errorf("finished match in phase %s", s.Phase))
		}
	}
	return errors.Join(errs...)
}

// validate adds the checks that depend on the format to State.Validate.
func (r Rules) validate(s State) error {
	errs := []error{s.Validate()}
	if !s.IsMatchFinished {
		if side, ok := r.gameWinner(s); ok {
			errs = append(errs, fmt.Errorf("game won by %s left unresolved", side))
		}
		if r.matchWon(s) {
			errs = append(errs, errors.New("match won but not finished"))
		}
	}
	return errors.Join(errs...)
}
