package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsDisplay(t *testing.T) {
	cases := []struct {
		points, opponent int
		tiebreak         bool
		want             string
	}{
		{0, 0, false, "0"},
		{1, 0, false, "15"},
		{2, 3, false, "30"},
		{3, 0, false, "40"},
		{3, 3, false, "40"},
		{4, 3, false, "ADV"},
		{3, 4, false, "40"},
		{4, 4, false, "40"},
		{7, 6, false, "ADV"},
		{-1, 0, false, "0"},
		{5, 3, true, "5"},
		{0, 0, true, "0"},
		{11, 10, true, "11"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PointsDisplay(tc.points, tc.opponent, tc.tiebreak), "%d-%d tiebreak=%v", tc.points, tc.opponent, tc.tiebreak)
	}
}

func TestStatePointsDisplayUsesTiebreakMode(t *testing.T) {
	s := NewState()
	s.Player1.Points = 2
	s.Player2.Points = 1
	assert.Equal(t, "30", s.PointsDisplay(Side1))
	assert.Equal(t, "15", s.PointsDisplay(Side2))

	s.IsSuperTiebreak = true
	assert.Equal(t, "2", s.PointsDisplay(Side1))
	assert.Equal(t, "1", s.PointsDisplay(Side2))
}

func TestServePercentages(t *testing.T) {
	st := Stats{FirstServesIn: 2, FirstServesTotal: 3, SecondServesIn: 3, SecondServesTotal: 4}
	assert.Equal(t, 66, st.FirstServePercentage())
	assert.Equal(t, 75, st.SecondServePercentage())
	assert.Equal(t, 0, Stats{}.FirstServePercentage())
}
