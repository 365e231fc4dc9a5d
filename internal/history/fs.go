package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/timeutil"
)

const (
	matchesDir           = "matches"
	defaultRetentionDays = 90
)

// FSArchive keeps one JSON file per finished match under {base}/matches/{date}/{id}.json,
// where date is the UTC day the match finished, plus a manifest at the root. Each write
// prunes days older than the retention window.
type FSArchive struct {
	basePath      string
	retentionDays int
	now           func() time.Time

	mu sync.Mutex
}

// NewFSArchive constructs an archive rooted at basePath.
func NewFSArchive(basePath string, retentionDays int) *FSArchive {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &FSArchive{
		basePath:      basePath,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// BasePath exposes the archive root.
func (a *FSArchive) BasePath() string {
	if a == nil {
		return ""
	}
	return a.basePath
}

// RecordPath builds the path of a match file.
func RecordPath(basePath, date, id string) string {
	return filepath.Join(basePath, matchesDir, date, id+".json")
}

func (a *FSArchive) Save(ctx context.Context, record matches.Record) error {
	if err := validID(record.ID); err != nil {
		return err
	}
	if record.FinishedAt.IsZero() {
		return fmt.Errorf("archive %s: %w", record.ID, matches.ErrNotFinished)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok, err := a.locate(record.ID); err != nil {
		return err
	} else if ok {
		return ErrExists
	}

	target := RecordPath(a.basePath, timeutil.FormatDate(record.FinishedAt), record.ID)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := writeJSONAtomic(target, record); err != nil {
		return err
	}
	return a.updateManifest(true)
}

func (a *FSArchive) Get(ctx context.Context, id string) (matches.Record, error) {
	if validID(id) != nil {
		return matches.Record{}, ErrNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	path, ok, err := a.locate(id)
	if err != nil {
		return matches.Record{}, err
	}
	if !ok {
		return matches.Record{}, ErrNotFound
	}
	return readRecord(path)
}

func (a *FSArchive) List(ctx context.Context, q Query) ([]matches.Record, error) {
	q = q.Normalize()

	a.mu.Lock()
	defer a.mu.Unlock()

	dates, err := a.listDates()
	if err != nil {
		return nil, err
	}

	out := make([]matches.Record, 0)
	for i := len(dates) - 1; i >= 0; i-- {
		if !dayInRange(dates[i], q) {
			continue
		}
		records, err := a.readDay(dates[i])
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			if q.Matches(r) {
				out = append(out, r)
			}
		}
		// Days are visited newest first, so a full page can stop the scan.
		if len(out) >= q.Limit {
			break
		}
	}

	sortRecent(out)
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (a *FSArchive) Delete(ctx context.Context, id string) error {
	if validID(id) != nil {
		return ErrNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	path, ok, err := a.locate(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	_ = os.Remove(filepath.Dir(path))
	return a.updateManifest(false)
}

func (a *FSArchive) Count(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	counts, err := a.countByDate()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total, nil
}

func (a *FSArchive) locate(id string) (string, bool, error) {
	dates, err := a.listDates()
	if err != nil {
		return "", false, err
	}
	for _, d := range dates {
		path := RecordPath(a.basePath, d, id)
		if _, err := os.Stat(path); err == nil {
			return path, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, err
		}
	}
	return "", false, nil
}

func (a *FSArchive) listDates() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(a.basePath, matchesDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := timeutil.ParseDate(e.Name()); err != nil {
			continue
		}
		dates = append(dates, e.Name())
	}
	sort.Strings(dates)
	return dates, nil
}

func (a *FSArchive) readDay(date string) ([]matches.Record, error) {
	ids, err := a.listIDs(date)
	if err != nil {
		return nil, err
	}
	out := make([]matches.Record, 0, len(ids))
	for _, id := range ids {
		r, err := readRecord(RecordPath(a.basePath, date, id))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (a *FSArchive) listIDs(date string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(a.basePath, matchesDir, date))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (a *FSArchive) countByDate() ([]DateCount, error) {
	dates, err := a.listDates()
	if err != nil {
		return nil, err
	}
	counts := make([]DateCount, 0, len(dates))
	for _, d := range dates {
		ids, err := a.listIDs(d)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			continue
		}
		counts = append(counts, DateCount{Date: d, Count: len(ids)})
	}
	return counts, nil
}

func (a *FSArchive) updateManifest(wrote bool) error {
	m, err := ReadManifest(a.basePath)
	if err != nil {
		m = defaultManifest(a.retentionDays)
	}
	now := a.now().UTC()

	if err := a.prune(now); err != nil {
		return err
	}
	counts, err := a.countByDate()
	if err != nil {
		return err
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	m.Retention.Days = a.retentionDays
	m.Matches.Dates = counts
	m.Matches.Total = total
	if wrote {
		m.Matches.LastWrite = now
	}
	return writeManifest(a.basePath, m, now)
}

func (a *FSArchive) prune(now time.Time) error {
	cutoff := timeutil.StartOfDay(now).AddDate(0, 0, -a.retentionDays)
	dates, err := a.listDates()
	if err != nil {
		return err
	}
	for _, d := range dates {
		parsed, err := timeutil.ParseDate(d)
		if err != nil || !parsed.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(a.basePath, matchesDir, d)); err != nil {
			return err
		}
	}
	return nil
}

func dayInRange(date string, q Query) bool {
	day, err := timeutil.ParseDate(date)
	if err != nil {
		return false
	}
	if !q.From.IsZero() && day.AddDate(0, 0, 1).Before(q.From) {
		return false
	}
	if !q.To.IsZero() && day.After(q.To) {
		return false
	}
	return true
}

func readRecord(path string) (matches.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return matches.Record{}, err
	}
	defer f.Close()

	var r matches.Record
	if err := json.NewDecoder(f).Decode(&r); err != nil {
		return matches.Record{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return r, nil
}

func validID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid match id %q", id)
	}
	return nil
}
