// Package harness runs recipe scenarios as executable contract tests.
//
// A scenario creates collections, executes a sequence of recipe operations
// against a fresh in-memory store and checks the outcome of every step plus
// a set of assertions over the final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	collections: [family, neighbors]
//	tenant: [family]
//	steps:
//	  - op: create_recipe
//	    as: cocoa
//	    collection: family
//	    create:
//	      title: Hot Chocolate
//	      ingredients: [Milk, Butter, Chocolate]
//	  - op: update_recipe
//	    recipe: cocoa
//	    update:
//	      title: Hot Chocolate
//	      ingredients:
//	        - text: Cream
//	        - keep: Butter
//	    expect:
//	      ingredients: [Cream, Butter]
//	  - op: list
//	    list: { sort: title, order: ASC, limit: 2, all: true }
//	    expect:
//	      pages: [1]
//	assertions:
//	  - type: ids_kept
//	    recipe: cocoa
//	    kind: ingredient
//	    texts: [Butter]
//
// Collections and recipes are named by alias; the harness maps aliases to
// the generated ids. An alias it does not know is used verbatim as an id,
// which is how scenarios refer to recipes that do not exist. In an update,
// "keep: <text>" reuses the id of the recipe's current item with that text.
//
// # Step Operations
//
//   - create_recipe: creates a recipe in collection and records it as as
//   - update_recipe: full-replace update of recipe
//   - get_recipe: reads recipe
//   - set_liked: sets the liked flag of recipe to liked
//   - delete_recipe: deletes recipe
//   - list: lists one page, or every page when all is set; resume continues
//     from the cursor of the previous list step
//
// Every step may override the scenario tenant with its own tenant list and
// may carry an expect clause; a step without one must succeed.
//
// # Assertion Types
//
//   - trace_contains: a step with the given op (and outcome) ran
//   - trace_order: ops appear in the given order
//   - trace_count: op (with outcome) ran exactly count times
//   - items: the stored items of kind are exactly texts
//   - ids_kept: the stored items with texts still have their original ids
//   - recipe_missing: recipe no longer exists
//
// # Deterministic Testing
//
// Ids come from a sequential generator and timestamps from a stepping
// clock, so a scenario produces the same trace on every run. RunWithGolden
// compares that trace with testdata/golden/<name>.golden.
package harness
