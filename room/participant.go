package room

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/wfunc/wordimpostor/models"
	"github.com/wfunc/wordimpostor/roles"
)

// MaxNameLength bounds display names, in runes.
const MaxNameLength = 32

// Acceptance is a participant's answer to the current rematch request.
type Acceptance int8

const (
	AcceptanceUnset Acceptance = iota
	AcceptanceAccepted
	AcceptanceDeclined
)

// Participant is a connection that joined a room.
type Participant struct {
	ID      string
	Name    string
	IsHost  bool
	Rematch Acceptance
}

func (p *Participant) member() models.Member {
	return models.Member{ID: p.ID, Name: p.Name, IsHost: p.IsHost}
}

func (p *Participant) candidate() roles.Candidate {
	return roles.Candidate{ID: p.ID, IsHost: p.IsHost}
}

// normalizeName trims a display name and checks its length.
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// foldName is the key used for case-insensitive name comparison.
func foldName(name string) string {
	return cases.Fold().String(name)
}
