package models

import "strings"

// Participant is one row of a race snapshot. Identifier may be empty;
// TeamName is the display key.
type Participant struct {
	Identifier    string
	TeamName      string
	StartPosition int
	Laps          map[int]int // lap number -> position on that lap
}

func (p Participant) LapPosition(lap int) (int, bool) {
	pos, ok := p.Laps[lap]
	return pos, ok
}

// Snapshot is the whole participant list as loaded at one point in time.
// It is replaced wholesale on reload and never mutated in place.
type Snapshot []Participant

type RankedEntry struct {
	Rank        int
	Participant Participant
	SortKey     int
}

type EntityKind string

const (
	EntityWallet EntityKind = "wallet"
	EntityTeam   EntityKind = "team"
)

type TrackedEntity struct {
	Kind  EntityKind
	Value string
}

type Language string

const (
	LanguageRU Language = "ru"
	LanguageEN Language = "en"
	LanguageUK Language = "uk"

	DefaultLanguage = LanguageRU
)

var Languages = []Language{LanguageRU, LanguageEN, LanguageUK}

func ParseLanguage(s string) (Language, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range Languages {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}
