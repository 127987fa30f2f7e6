// Package reconcile diffs a recipe's stored child list against a
// caller-submitted replacement list.
//
// The desired list's order is the target position order. Every surviving
// item is rewritten with its new position, whether or not anything about it
// changed: an insert or delete anywhere shifts everything after it, and
// recomputing positions from scratch keeps them contiguous and zero-based.
//
// Reconcile is pure. Applying a Plan is the store's job.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/roach88/mise/internal/ids"
	"github.com/roach88/mise/internal/model"
)

// Op is one row write: the item's id, text and target position.
type Op struct {
	ID       string
	Text     string
	Position int
}

// Plan is the set of writes that turns the current list into the desired
// one. Updates and Inserts are in target-position order; Deletes are in
// current-position order.
type Plan struct {
	Kind    model.ItemKind
	Inserts []Op
	Updates []Op
	Deletes []string
}

// Empty reports whether the plan writes nothing.
func (p Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Size returns the number of operations in the plan.
func (p Plan) Size() int {
	return len(p.Inserts) + len(p.Updates) + len(p.Deletes)
}

// Reconcile computes the plan for one child kind.
//
// A desired item that carries an id must match a current item; a stale or
// foreign id is a NOT_FOUND error rather than a silent no-op. The same id
// appearing twice in desired is a VALIDATION error. Fresh ids for inserts
// come from gen.
func Reconcile(kind model.ItemKind, current []model.Item, desired []model.ItemUpdate, gen ids.Generator) (Plan, error) {
	if !kind.Valid() {
		return Plan{}, model.NewValidationError(fmt.Sprintf("unknown item kind %q", kind))
	}

	currentIDs := make(map[string]struct{}, len(current))
	for _, it := range current {
		currentIDs[it.ID] = struct{}{}
	}

	desiredIDs := make(map[string]struct{}, len(desired))
	for i, d := range desired {
		if d.ID == "" {
			continue
		}
		if _, dup := desiredIDs[d.ID]; dup {
			return Plan{}, model.NewValidationError(fmt.Sprintf("%s %s appears more than once (index %d)", kind, d.ID, i))
		}
		if _, ok := currentIDs[d.ID]; !ok {
			return Plan{}, model.NewNotFoundError(string(kind), d.ID)
		}
		desiredIDs[d.ID] = struct{}{}
	}

	plan := Plan{
		Kind:    kind,
		Inserts: []Op{},
		Updates: []Op{},
		Deletes: []string{},
	}

	for _, it := range sortedByPosition(current) {
		if _, keep := desiredIDs[it.ID]; !keep {
			plan.Deletes = append(plan.Deletes, it.ID)
		}
	}

	for p, d := range desired {
		if d.ID == "" {
			plan.Inserts = append(plan.Inserts, Op{ID: gen.Generate(), Text: d.Text, Position: p})
			continue
		}
		plan.Updates = append(plan.Updates, Op{ID: d.ID, Text: d.Text, Position: p})
	}

	return plan, nil
}

// sortedByPosition returns current ordered by position without modifying
// the input. Stored lists are normally already ordered.
func sortedByPosition(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
