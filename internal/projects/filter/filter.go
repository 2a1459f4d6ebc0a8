// Package filter derives the visible part of the directory from a Criteria.
// Everything here is pure and safe to call from any number of goroutines.
package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/argentech/argentech-backend/internal/projects/domain"
)

// Apply returns the projects that satisfy every active predicate of c, in
// input order. The input slice is never modified.
func Apply(projects []domain.Project, c domain.Criteria) []domain.Project {
	m := newMatcher(c)
	out := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Match reports whether a single project satisfies c.
func Match(p domain.Project, c domain.Criteria) bool {
	return newMatcher(c).match(p)
}

type matcher struct {
	fold cases.Caser

	name            string
	industry        *string
	province        *string
	founderName     string
	founderProvince *string
}

func newMatcher(c domain.Criteria) *matcher {
	// a Caser keeps state, one per matcher
	m := &matcher{
		fold:            cases.Fold(),
		industry:        c.Industry,
		province:        c.Province,
		founderProvince: c.FounderProvince,
	}
	if c.Name != nil {
		m.name = m.fold.String(*c.Name)
	}
	if c.FounderName != nil {
		m.founderName = m.fold.String(*c.FounderName)
	}
	return m
}

func (m *matcher) match(p domain.Project) bool {
	if m.name != "" && !m.contains(p.Name, m.name) {
		return false
	}
	if m.industry != nil && p.Industry != *m.industry {
		return false
	}
	if m.province != nil && p.Province != *m.province {
		return false
	}
	if m.founderName != "" && !m.anyFounder(p.Founders, func(f domain.Founder) bool {
		return m.contains(f.Name, m.founderName)
	}) {
		return false
	}
	if m.founderProvince != nil && !m.anyFounder(p.Founders, func(f domain.Founder) bool {
		return f.Province == *m.founderProvince
	}) {
		return false
	}
	return true
}

func (m *matcher) contains(haystack, foldedNeedle string) bool {
	return strings.Contains(m.fold.String(haystack), foldedNeedle)
}

// anyFounder is false for an empty founder list.
func (m *matcher) anyFounder(founders []domain.Founder, pred func(domain.Founder) bool) bool {
	for _, f := range founders {
		if pred(f) {
			return true
		}
	}
	return false
}
