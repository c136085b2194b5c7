// Package rules evaluates cantonal fishing regulations from a JSON dataset.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Dataset is the on-disk rules document: canton code → species → entry.
// Canton and species keys are stored lowercased.
type Dataset struct {
	Cantons map[string]Canton `json:"cantons"`
}

// Canton groups species entries for one canton.
type Canton struct {
	Species map[string]Entry `json:"species"`
}

// Entry is the regulation record for one species in one canton.
type Entry struct {
	ClosedSeasons  []Season `json:"closed_seasons"`
	MinSizeCM      *float64 `json:"min_size_cm"`
	BagLimit       *int     `json:"bag_limit"`
	MethodsAllowed []string `json:"methods_allowed"`
	Sources        []string `json:"sources"`
}

// Season is an inclusive ISO-date range.
type Season struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Verdict is the result of a rules check.
type Verdict struct {
	Legal     bool     `json:"legal"`
	Closed    bool     `json:"closed"`
	MinSizeCM *float64 `json:"min_size_cm"`
	BagLimit  *int     `json:"bag_limit"`
}

// Store holds a loaded dataset.
type Store struct {
	data Dataset
}

// Load reads the dataset from path. A missing file yields an empty store so
// a deployment without rules data still answers (everything legal, nothing
// closed), matching the permissive default of the dataset contract.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Store{data: Dataset{Cantons: map[string]Canton{}}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes dataset bytes into a Store.
func Parse(raw []byte) (*Store, error) {
	var data Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("rules: parse dataset: %w", err)
	}
	if data.Cantons == nil {
		data.Cantons = map[string]Canton{}
	}
	return &Store{data: data}, nil
}

// Check evaluates whether fishing for a species with a method on a date is
// legal in a canton. dateISO must be a calendar date (YYYY-MM-DD); a
// malformed date is an error so the caller fails closed.
func (s *Store) Check(canton, species, method, dateISO string) (Verdict, error) {
	if _, err := time.Parse("2006-01-02", dateISO); err != nil {
		return Verdict{}, fmt.Errorf("rules: invalid date %q: %w", dateISO, err)
	}
	c := strings.ToLower(strings.TrimSpace(canton))
	sp := strings.ToLower(strings.TrimSpace(species))
	m := strings.ToLower(strings.TrimSpace(method))

	entry := s.data.Cantons[c].Species[sp]

	closed := false
	for _, season := range entry.ClosedSeasons {
		// Inclusive range compare; ISO dates order lexicographically.
		if season.From <= dateISO && dateISO <= season.To {
			closed = true
			break
		}
	}

	methodOK := true
	if len(entry.MethodsAllowed) > 0 {
		methodOK = false
		for _, allowed := range entry.MethodsAllowed {
			if strings.ToLower(allowed) == m {
				methodOK = true
				break
			}
		}
	}

	return Verdict{
		Legal:     !closed && methodOK,
		Closed:    closed,
		MinSizeCM: entry.MinSizeCM,
		BagLimit:  entry.BagLimit,
	}, nil
}

// Cantons returns the canton codes present in the dataset.
func (s *Store) Cantons() []string {
	out := make([]string, 0, len(s.data.Cantons))
	for c := range s.data.Cantons {
		out = append(out, c)
	}
	return out
}
