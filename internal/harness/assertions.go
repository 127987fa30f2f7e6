package harness

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/recipes"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		target := ""
		if event.Target != "" {
			target = " " + event.Target
		}
		fmt.Fprintf(&buf, "  [%d] %s%s -> %s\n", event.Step, event.Op, target, event.Outcome)
	}

	return buf.String()
}

// AssertionContext provides what state assertions need to read the store.
type AssertionContext struct {
	Ctx     context.Context
	Service *recipes.Service

	// Tenant must see every collection of the scenario.
	Tenant model.TenantContext

	// Resolve maps a recipe alias to its id.
	Resolve func(alias string) string

	// FirstIDs holds the first id observed per recipe alias, kind and text.
	FirstIDs map[string]map[model.ItemKind]map[string]string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// State assertions need actx; trace assertions do not.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertItems, AssertIDsKept, AssertRecipeMissing:
			if actx == nil || actx.Service == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a service", i, assertion.Type)
			} else {
				err = assertState(actx, assertion, result.Trace)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func matches(event TraceEvent, a Assertion) bool {
	return event.Op == a.Op && (a.Outcome == "" || event.Outcome == a.Outcome)
}

func describe(a Assertion) string {
	if a.Outcome == "" {
		return a.Op
	}
	return fmt.Sprintf("%s -> %s", a.Op, a.Outcome)
}

// assertTraceContains checks that some step matches op and outcome.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if matches(event, assertion) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describe(assertion),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if ops appear in the specified order.
// Ops don't need to be consecutive (intervening steps are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(assertion.Ops) && event.Op == assertion.Ops[next] {
			next++
		}
	}
	if next == len(assertion.Ops) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
		Actual:   fmt.Sprintf("no %s after %v", assertion.Ops[next], assertion.Ops[:next]),
		Trace:    trace,
	}
}

// assertTraceCount checks if the op appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if matches(event, assertion) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, describe(assertion)),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertState reads the recipe from the store and checks it.
func assertState(actx *AssertionContext, assertion Assertion, trace []TraceEvent) error {
	id := assertion.Recipe
	if actx.Resolve != nil {
		id = actx.Resolve(assertion.Recipe)
	}
	full, err := actx.Service.GetRecipe(actx.Ctx, actx.Tenant, id)

	if assertion.Type == AssertRecipeMissing {
		if model.IsNotFound(err) {
			return nil
		}
		actual := "recipe exists"
		if err != nil {
			actual = err.Error()
		}
		return &AssertionError{
			Type:     AssertRecipeMissing,
			Expected: fmt.Sprintf("recipe %s not found", assertion.Recipe),
			Actual:   actual,
			Trace:    trace,
		}
	}
	if err != nil {
		return fmt.Errorf("%s: load recipe %s: %w", assertion.Type, assertion.Recipe, err)
	}

	kind := model.ItemKind(assertion.Kind)
	items := full.Items(kind)

	switch assertion.Type {
	case AssertItems:
		got := itemTexts(items)
		if len(got) == 0 && len(assertion.Texts) == 0 {
			return nil
		}
		if !reflect.DeepEqual(got, assertion.Texts) {
			return &AssertionError{
				Type:     AssertItems,
				Expected: fmt.Sprintf("%s %ss %q", assertion.Recipe, kind, assertion.Texts),
				Actual:   fmt.Sprintf("%q", got),
				Trace:    trace,
			}
		}
	case AssertIDsKept:
		first := actx.FirstIDs[assertion.Recipe][kind]
		for _, text := range assertion.Texts {
			want, ok := first[text]
			if !ok {
				return fmt.Errorf("ids_kept: %s %q was never observed in %s", kind, text, assertion.Recipe)
			}
			got := ""
			for _, it := range items {
				if it.Text == text {
					got = it.ID
					break
				}
			}
			if got != want {
				return &AssertionError{
					Type:     AssertIDsKept,
					Expected: fmt.Sprintf("%s %q keeps id %s", kind, text, want),
					Actual:   fmt.Sprintf("id %q", got),
					Trace:    trace,
				}
			}
		}
	}

	return nil
}
