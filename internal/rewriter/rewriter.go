// Package rewriter walks a parsed JSON document and replaces the values of
// credential-like properties.
package rewriter

import (
	"encoding/json"
	"fmt"

	"github.com/mcncl/credscrub/internal/classifier"
	"github.com/mcncl/credscrub/internal/models"
	"github.com/mcncl/credscrub/internal/strategy"
)

// Stats counts what a rewrite touched
type Stats struct {
	// Properties is the number of object properties visited
	Properties int
	// Replaced is the number of property values that were replaced
	Replaced int
}

// Rewriter applies one replacement strategy to every sensitive property of a document
type Rewriter struct {
	strategy    strategy.Strategy
	transform   strategy.Transform
	isSensitive func(string) bool
}

// New creates a Rewriter for s. An unusable strategy is reported here so a
// misconfigured run fails before any document is visited.
func New(s strategy.Strategy) (*Rewriter, error) {
	transform, err := s.Transformer()
	if err != nil {
		return nil, err
	}
	return &Rewriter{
		strategy:    s,
		transform:   transform,
		isSensitive: classifier.IsSensitive,
	}, nil
}

// Strategy returns the strategy this rewriter applies
func (r *Rewriter) Strategy() strategy.Strategy {
	return r.strategy
}

// Rewrite mutates value in place and reports what it changed.
// A bare scalar root has no property key and is left untouched.
func (r *Rewriter) Rewrite(value models.JSONValue) Stats {
	var stats Stats
	r.walk(value, &stats)
	return stats
}

// walk recurses depth-first through containers. Array elements are never
// tested for sensitivity themselves; only object properties carry a key.
func (r *Rewriter) walk(value models.JSONValue, stats *Stats) {
	switch v := value.(type) {
	case models.JSONArray:
		for _, item := range v {
			r.walk(item, stats)
		}
	case *models.JSONObject:
		for _, key := range v.Keys() {
			stats.Properties++
			child, _ := v.Get(key)
			if isContainer(child) {
				r.walk(child, stats)
				continue
			}
			if r.isSensitive(key) {
				v.Set(key, r.transform(stringForm(child)))
				stats.Replaced++
			}
		}
	}
}

func isContainer(value models.JSONValue) bool {
	switch value.(type) {
	case models.JSONArray, *models.JSONObject:
		return true
	default:
		return false
	}
}

// stringForm renders a scalar the way it appears in the source text,
// without quotes for strings. Hashes are always taken over this form, so
// 42 and "42" hash to the same digest.
func stringForm(value models.JSONValue) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}
