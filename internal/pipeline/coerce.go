package pipeline

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type CoercionKind string

const (
	CoercedNull        CoercionKind = "null"
	CoercedUnparseable CoercionKind = "unparseable"
	CoercedDate        CoercionKind = "bad_date"
)

type CoercionCount struct {
	Source string       `json:"source"`
	Column string       `json:"column"`
	Kind   CoercionKind `json:"kind"`
	Count  int          `json:"count"`
}

type coercionKey struct {
	source, column string
	kind           CoercionKind
}

// CoercionLedger counts values that were silently replaced, so a zero in the
// output can be told apart from a true zero. A nil ledger discards notes.
type CoercionLedger struct {
	mu     sync.Mutex
	counts map[coercionKey]int
}

func NewCoercionLedger() *CoercionLedger {
	return &CoercionLedger{counts: make(map[coercionKey]int)}
}

func (l *CoercionLedger) Note(source, column string, kind CoercionKind) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[coercionKey{source, column, kind}]++
}

// Counts returns a snapshot ordered by source, column and kind.
func (l *CoercionLedger) Counts() []CoercionCount {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CoercionCount, 0, len(l.counts))
	for k, n := range l.counts {
		out = append(out, CoercionCount{Source: k.source, Column: k.column, Kind: k.kind, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		if out[i].Column != out[j].Column {
			return out[i].Column < out[j].Column
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func (l *CoercionLedger) Total() int {
	n := 0
	for _, c := range l.Counts() {
		n += c.Count
	}
	return n
}

// parseNumber reads a numeric cell. kind is empty when v held a usable number.
func parseNumber(v any) (f float64, kind CoercionKind) {
	switch x := v.(type) {
	case nil:
		return 0, CoercedNull
	case float64:
		if math.IsNaN(x) {
			return 0, CoercedNull
		}
		return x, ""
	case int:
		return float64(x), ""
	case int64:
		return float64(x), ""
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, CoercedNull
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, CoercedUnparseable
		}
		if math.IsNaN(f) {
			return 0, CoercedNull
		}
		return f, ""
	default:
		return 0, CoercedUnparseable
	}
}

// coerceNumber is parseNumber with every failure recorded against source/column.
func coerceNumber(l *CoercionLedger, source, column string, v any) float64 {
	f, kind := parseNumber(v)
	if kind != "" {
		l.Note(source, column, kind)
	}
	return f
}

func isNull(v any) bool {
	_, kind := parseNumber(v)
	return kind == CoercedNull
}
