// Package strategy defines how a credential value is neutralized.
package strategy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/credscrub/internal/errors"
)

// Placeholder is the marker written in place of a value by the Placeholder strategy.
const Placeholder = "<SECRET>"

// Strategy selects the replacement applied to a sensitive value.
// The zero value is None, which is never valid for a run.
type Strategy int

const (
	None Strategy = iota
	PlaceholderStrategy
	HashStrategy
	BlankStrategy
)

// All lists the strategies a run can use, in menu order.
var All = []Strategy{PlaceholderStrategy, HashStrategy, BlankStrategy}

// Transform maps an original value to its replacement.
type Transform func(original string) string

// String returns the lower-case name of the strategy
func (s Strategy) String() string {
	switch s {
	case None:
		return "none"
	case PlaceholderStrategy:
		return "placeholder"
	case HashStrategy:
		return "hash"
	case BlankStrategy:
		return "blank"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Label is the human readable menu entry for s
func (s Strategy) Label() string {
	switch s {
	case PlaceholderStrategy:
		return fmt.Sprintf("Placeholder (%s)", Placeholder)
	case HashStrategy:
		return "Hash (SHA-256)"
	case BlankStrategy:
		return "Blank"
	default:
		return s.String()
	}
}

// Transformer validates s and returns the replacement function for it.
// Callers check the error once before touching any value; the returned
// Transform never fails.
func (s Strategy) Transformer() (Transform, error) {
	switch s {
	case PlaceholderStrategy:
		return func(string) string { return Placeholder }, nil
	case HashStrategy:
		return hashHex, nil
	case BlankStrategy:
		return func(string) string { return "" }, nil
	case None:
		return nil, errors.NewConfigurationError("no replacement strategy selected", errors.ErrNoStrategy)
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported replacement strategy %s", s), errors.ErrUnknownStrategy)
	}
}

// hashHex returns the lower-case hex SHA-256 digest of the UTF-8 bytes of v
func hashHex(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}

// aliases maps normalized names to strategies. "secret" and "whitespace"
// are the names the tool has always used on its switches.
var aliases = map[string]Strategy{
	"placeholder": PlaceholderStrategy,
	"secret":      PlaceholderStrategy,
	"hash":        HashStrategy,
	"sha256":      HashStrategy,
	"blank":       BlankStrategy,
	"whitespace":  BlankStrategy,
	"empty":       BlankStrategy,
}

// Parse resolves a strategy name. Matching ignores case and word separators,
// so "Placeholder", "PLACE_HOLDER" and "place-holder" are all accepted.
func Parse(name string) (Strategy, error) {
	key := strings.ReplaceAll(strcase.ToSnake(strings.TrimSpace(name)), "_", "")
	if s, ok := aliases[key]; ok {
		return s, nil
	}
	return None, errors.NewConfigurationError(fmt.Sprintf("unknown replacement strategy '%s'", name), errors.ErrUnknownStrategy)
}
