// Package words picks the real word for a round.
package words

import (
	"errors"
	"sort"

	"github.com/wfunc/wordimpostor/random"
)

// Mode controls where the real word comes from.
type Mode string

const (
	ModeManual         Mode = "manual"
	ModeRandom         Mode = "random"
	ModeRandomCategory Mode = "randomCategory"
)

var (
	ErrUnknownMode     = errors.New("unknown mode")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyCategory   = errors.New("no candidate words")
)

// ParseMode maps a client-supplied mode name to a Mode. The older
// "randomCategoria" spelling is still accepted.
func ParseMode(s string) (Mode, error) {
	switch s {
	case string(ModeManual):
		return ModeManual, nil
	case string(ModeRandom):
		return ModeRandom, nil
	case string(ModeRandomCategory), "randomCategoria":
		return ModeRandomCategory, nil
	}
	return "", ErrUnknownMode
}

// Table maps a category name to its ordered candidate words.
type Table map[string][]string

// Has reports whether category is present.
func (t Table) Has(category string) bool {
	_, ok := t[category]
	return ok
}

// Categories returns category names in sorted order.
func (t Table) Categories() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All concatenates every category's words, categories in sorted order.
func (t Table) All() []string {
	var all []string
	for _, name := range t.Categories() {
		all = append(all, t[name]...)
	}
	return all
}

// Select returns the real word for a round. Manual mode returns manualWord
// verbatim and draws nothing; the random modes consume exactly one draw.
func Select(mode Mode, category, manualWord string, table Table, rng random.Source) (string, error) {
	var universe []string
	switch mode {
	case ModeManual:
		return manualWord, nil
	case ModeRandom:
		universe = table.All()
	case ModeRandomCategory:
		list, ok := table[category]
		if category == "" || !ok {
			return "", ErrUnknownCategory
		}
		universe = list
	default:
		return "", ErrUnknownMode
	}

	if len(universe) == 0 {
		return "", ErrEmptyCategory
	}
	return universe[rng.Intn(len(universe))], nil
}
