package history

import (
	"context"
	"errors"
	"sort"
	"time"

	"tennis-referee-service/internal/domain/matches"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

var (
	// ErrNotFound is returned when no archived match has the requested id.
	ErrNotFound = errors.New("archived match not found")
	// ErrExists is returned when a match with the same id is already archived.
	ErrExists = errors.New("match already archived")
)

// Archive stores finished matches.
type Archive interface {
	Save(ctx context.Context, record matches.Record) error
	Get(ctx context.Context, id string) (matches.Record, error)
	List(ctx context.Context, q Query) ([]matches.Record, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Query filters archived matches. Zero fields do not filter. Results are ordered
// most recently finished first.
type Query struct {
	CourtID string
	From    time.Time
	To      time.Time
	Limit   int
}

// Normalize applies the default and maximum page size.
func (q Query) Normalize() Query {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q
}

// Matches reports whether r passes the filter.
func (q Query) Matches(r matches.Record) bool {
	if q.CourtID != "" && r.CourtID != q.CourtID {
		return false
	}
	if !q.From.IsZero() && r.FinishedAt.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && r.FinishedAt.After(q.To) {
		return false
	}
	return true
}

func sortRecent(list []matches.Record) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].FinishedAt.Equal(list[j].FinishedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].FinishedAt.After(list[j].FinishedAt)
	})
}
