// Package model defines the recipe domain types shared by every other
// internal package.
//
// model imports nothing internal. Storage, pagination, reconciliation and
// the service layer all speak in these types, which keeps the dependency
// graph acyclic.
//
// Key design constraints:
//   - Recipes own their instructions and ingredients by foreign reference
//     only. A RecipeFull carries value copies of its items; items carry the
//     recipe id, never a pointer back to the recipe.
//   - Item positions are zero-based and contiguous per (recipe, kind).
//   - Timestamps are UTC with microsecond precision.
//   - All JSON tags use snake_case.
package model
