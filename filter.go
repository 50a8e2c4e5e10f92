package stormbus

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
)

// FilterFunc is a predicate for filtering events.
// Return true to deliver the event, false to skip it. A skipped event
// leaves the handle's state untouched.
type FilterFunc func(ev Event) bool

// FilterByName creates a filter that only allows events with the given
// name.
func FilterByName(name string) FilterFunc {
	return func(ev Event) bool {
		return ev.EventName() == name
	}
}

// FilterByNamePrefix creates a filter for events whose name starts with
// prefix.
func FilterByNamePrefix(prefix string) FilterFunc {
	return func(ev Event) bool {
		return strings.HasPrefix(ev.EventName(), prefix)
	}
}

// FilterAnd combines multiple filters with AND logic.
// All filters must pass for the event to be delivered.
func FilterAnd(filters ...FilterFunc) FilterFunc {
	return func(ev Event) bool {
		for _, f := range filters {
			if !f(ev) {
				return false
			}
		}
		return true
	}
}

// FilterOr combines multiple filters with OR logic.
// At least one filter must pass for the event to be delivered.
func FilterOr(filters ...FilterFunc) FilterFunc {
	return func(ev Event) bool {
		for _, f := range filters {
			if f(ev) {
				return true
			}
		}
		return false
	}
}

// FilterNot negates a filter.
func FilterNot(filter FilterFunc) FilterFunc {
	return func(ev Event) bool {
		return !filter(ev)
	}
}

// FilterAll allows all events (no filtering).
func FilterAll() FilterFunc {
	return func(ev Event) bool {
		return true
	}
}

// FilterNone blocks all events.
func FilterNone() FilterFunc {
	return func(ev Event) bool {
		return false
	}
}

// FilterExpr compiles an expression into a filter. The expression runs with
// two variables: "event" (the event value) and "name" (its EventName).
//
//	f, err := stormbus.FilterExpr(`name == "order" && event.Amount > 100`)
//
// An expression that errors at runtime rejects the event.
func FilterExpr(src string) (FilterFunc, error) {
	program, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}
	return func(ev Event) bool {
		out, err := expr.Run(program, map[string]any{
			"event": ev,
			"name":  ev.EventName(),
		})
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}, nil
}
