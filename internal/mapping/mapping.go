// Package mapping loads the payee routing table and performs normalized
// payee lookups. The table is read once per batch and never mutated
// afterwards, so a loaded Table is safe to share across batches.
package mapping

import "strings"

const (
	// Uncategorized is the routing target returned when a payee has no rule.
	// Absence of a mapping is a normal outcome, not an error.
	Uncategorized = "Uncategorized"

	// NoGLCode is the GL code sentinel for unmapped payees.
	NoGLCode = "N/A"
)

// Mode selects how payee names are normalized before comparison. Historical
// output was produced with two divergent normalizers; both are kept so old
// filenames can be reproduced.
type Mode int

const (
	// ModeCollapse uppercases, trims, and collapses internal whitespace runs
	// to a single space. This is the production default.
	ModeCollapse Mode = iota

	// ModeUpperOnly uppercases and trims but keeps internal whitespace as-is.
	ModeUpperOnly
)

// Rule is one row of the routing table.
type Rule struct {
	Payee         string
	RoutingTarget string
	GLCode        string
}

// Table is an immutable payee routing table indexed by normalized payee name.
// Duplicate payees are last-write-wins, matching the external editor's save
// behaviour.
type Table struct {
	rules []Rule
	index map[string]Rule
	mode  Mode
}

// NewTable builds a table from rules using the given normalization mode.
func NewTable(rules []Rule, mode Mode) *Table {
	t := &Table{
		rules: rules,
		index: make(map[string]Rule, len(rules)),
		mode:  mode,
	}
	for _, r := range rules {
		key := t.normalize(r.Payee)
		if key == "" {
			continue
		}
		t.index[key] = r
	}
	return t
}

// Empty returns a table with no rules. Lookups against it resolve to the
// Uncategorized sentinels.
func Empty() *Table {
	return NewTable(nil, ModeCollapse)
}

// Len returns the number of loaded rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// Rules returns the loaded rules in file order.
func (t *Table) Rules() []Rule {
	return t.rules
}

// Resolve returns the routing target and GL code for a payee. The lookup key
// and the table entries are normalized identically. No match returns the
// Uncategorized / NoGLCode sentinels.
func (t *Table) Resolve(payee string) (target, glCode string) {
	key := t.normalize(payee)
	if key == "" {
		return Uncategorized, NoGLCode
	}
	rule, ok := t.index[key]
	if !ok {
		return Uncategorized, NoGLCode
	}
	target = strings.TrimSpace(rule.RoutingTarget)
	if target == "" {
		target = Uncategorized
	}
	glCode = strings.TrimSpace(rule.GLCode)
	if glCode == "" {
		glCode = NoGLCode
	}
	return target, glCode
}

func (t *Table) normalize(s string) string {
	if t.mode == ModeUpperOnly {
		return strings.ToUpper(strings.TrimSpace(s))
	}
	return Normalize(s)
}

// Normalize uppercases, trims, and collapses internal whitespace runs to a
// single space. Two payee strings equal under Normalize resolve identically.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
