package config

import "tennis-referee-service/internal/scoring"

// RulesConfig selects the match format every new match is scored with.
type RulesConfig struct {
	GamesPerSet         int  `env:"RULES_GAMES_PER_SET" envDefault:"4"`
	GamePoints          int  `env:"RULES_GAME_POINTS" envDefault:"4"`
	TiebreakPoints      int  `env:"RULES_TIEBREAK_POINTS" envDefault:"7"`
	SuperTiebreakPoints int  `env:"RULES_SUPER_TIEBREAK_POINTS" envDefault:"10"`
	SetsToWin           int  `env:"RULES_SETS_TO_WIN" envDefault:"2"`
	LenientPhases       bool `env:"RULES_LENIENT_PHASES" envDefault:"false"`
}

// ScoringRules converts the configuration to validated engine rules.
func (r RulesConfig) ScoringRules() (scoring.Rules, error) {
	rules := scoring.Rules{
		GamesPerSet:         r.GamesPerSet,
		GamePoints:          r.GamePoints,
		TiebreakPoints:      r.TiebreakPoints,
		SuperTiebreakPoints: r.SuperTiebreakPoints,
		SetsToWin:           r.SetsToWin,
		LenientPhases:       r.LenientPhases,
	}
	if err := rules.Validate(); err != nil {
		return scoring.Rules{}, err
	}
	return rules, nil
}
