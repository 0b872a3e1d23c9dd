package runner

import (
	"cmp"
	"slices"

	"github.com/roach88/unitrun/internal/env"
)

// Body is a unit's test function. It threads the Env it receives and
// returns the updated value.
type Body func(e env.Env) env.Env

// Unit is a named test unit owned by a group.
type Unit struct {
	Name  string
	Group string

	// Body is nil for plain definitions that live in the group but are not
	// tests. Such units are skipped.
	Body Body

	// Hook marks the group's ordering hook.
	Hook bool
}

// Plain adapts a body that does not return its Env. RunUnit settles the
// counts and early-return requests made through the Env fn was handed from
// the run ledger.
func Plain(fn func(e env.Env)) Body {
	return func(e env.Env) env.Env {
		fn(e)
		return e
	}
}

func sortedByName(units []Unit) []Unit {
	out := slices.Clone(units)
	slices.SortStableFunc(out, func(a, b Unit) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

func findHook(units []Unit) (Unit, bool) {
	for _, u := range units {
		if u.Hook && u.Body != nil {
			return u, true
		}
	}
	return Unit{}, false
}

// groupUnits buckets units by group and returns the group ids sorted.
func groupUnits(units []Unit) ([]string, map[string][]Unit) {
	byGroup := make(map[string][]Unit)
	var ids []string
	for _, u := range units {
		if _, seen := byGroup[u.Group]; !seen {
			ids = append(ids, u.Group)
		}
		byGroup[u.Group] = append(byGroup[u.Group], u)
	}
	slices.Sort(ids)
	return ids, byGroup
}
