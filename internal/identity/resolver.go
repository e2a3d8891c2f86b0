// Package identity resolves free-form user input to a race participant.
package identity

import (
	"strings"

	"github.com/whenToSleep/race-info-bot/internal/models"
)

type Class int

const (
	PlainText Class = iota
	WalletLike
)

// WalletSuffixes are the account suffixes recognised as wallet references.
var WalletSuffixes = []string{".near", ".tg"}

const hashLen = 64

// Classify reports whether text looks like a wallet: a known suffix in any
// case, or a 64 character hex string. No checksum validation is done.
func Classify(text string) Class {
	lower := strings.ToLower(text)
	for _, suffix := range WalletSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return WalletLike
		}
	}
	if len(text) == hashLen && isHex(text) {
		return WalletLike
	}
	return PlainText
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Match is a resolved participant with the canonical value of what was matched.
type Match struct {
	Kind        models.EntityKind
	Value       string
	Participant models.Participant
}

func (m Match) Entity() models.TrackedEntity {
	return models.TrackedEntity{Kind: m.Kind, Value: m.Value}
}

// Resolve finds the participant that text refers to. Wallet-like input is
// first matched against identifiers, then every input is matched against
// team names. Matching is exact after trimming, ignoring case only.
func Resolve(snapshot models.Snapshot, text string) (Match, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Match{}, false
	}

	if Classify(text) == WalletLike {
		for _, p := range snapshot {
			if p.Identifier != "" && strings.EqualFold(p.Identifier, text) {
				return Match{Kind: models.EntityWallet, Value: p.Identifier, Participant: p}, true
			}
		}
	}

	for _, p := range snapshot {
		if strings.EqualFold(p.TeamName, text) {
			return Match{Kind: models.EntityTeam, Value: p.TeamName, Participant: p}, true
		}
	}
	return Match{}, false
}

// Lookup re-resolves a previously tracked entity against a fresh snapshot.
func Lookup(snapshot models.Snapshot, e models.TrackedEntity) (models.Participant, bool) {
	for _, p := range snapshot {
		switch e.Kind {
		case models.EntityWallet:
			if p.Identifier != "" && strings.EqualFold(p.Identifier, e.Value) {
				return p, true
			}
		case models.EntityTeam:
			if strings.EqualFold(p.TeamName, e.Value) {
				return p, true
			}
		}
	}
	return models.Participant{}, false
}
