package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mise/internal/model"
)

// Scenario defines a recipe conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Collections are created before the first step, named by alias.
	Collections []string `yaml:"collections"`

	// Tenant lists the collection aliases visible to the acting user.
	Tenant []string `yaml:"tenant"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the final stored state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step operations.
const (
	OpCreateRecipe = "create_recipe"
	OpUpdateRecipe = "update_recipe"
	OpGetRecipe    = "get_recipe"
	OpSetLiked     = "set_liked"
	OpDeleteRecipe = "delete_recipe"
	OpList         = "list"
)

// Step is one operation of a scenario.
type Step struct {
	Op string `yaml:"op"`

	// As names the recipe created by create_recipe.
	As string `yaml:"as,omitempty"`

	// Collection is the target of create_recipe.
	Collection string `yaml:"collection,omitempty"`

	// Recipe is the target of update, get, set_liked and delete.
	Recipe string `yaml:"recipe,omitempty"`

	// Tenant overrides the scenario tenant for this step.
	Tenant []string `yaml:"tenant,omitempty"`

	Create *model.RecipeCreate `yaml:"create,omitempty"`
	Update *UpdateSpec         `yaml:"update,omitempty"`
	Liked  *bool               `yaml:"liked,omitempty"`
	List   *ListSpec           `yaml:"list,omitempty"`

	// Expect checks the step outcome. Without it the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// UpdateSpec is an update payload whose item ids are given by reference.
type UpdateSpec struct {
	model.RecipeFields `yaml:",inline"`
	Instructions       []ItemRef `yaml:"instructions"`
	Ingredients        []ItemRef `yaml:"ingredients"`
}

// ItemRef is one desired item. Keep reuses the id of the recipe's current
// item with that text; ID sets an id verbatim. Text defaults to Keep.
type ItemRef struct {
	Keep string `yaml:"keep,omitempty"`
	ID   string `yaml:"id,omitempty"`
	Text string `yaml:"text,omitempty"`
}

// ListSpec parameterizes a list step.
type ListSpec struct {
	Sort   string `yaml:"sort"`
	Order  string `yaml:"order"`
	Limit  int    `yaml:"limit,omitempty"`
	Search string `yaml:"search,omitempty"`

	// All follows cursors until the last page.
	All bool `yaml:"all,omitempty"`

	// Resume starts from the cursor left by the previous list step.
	Resume bool `yaml:"resume,omitempty"`
}

// Expect specifies the expected outcome of a step. Only the fields that
// are set are compared.
type Expect struct {
	// Error is the expected error code; empty means success.
	Error        string   `yaml:"error,omitempty"`
	Title        string   `yaml:"title,omitempty"`
	Liked        *bool    `yaml:"liked,omitempty"`
	Instructions []string `yaml:"instructions,omitempty"`
	Ingredients  []string `yaml:"ingredients,omitempty"`
	Pages        []int    `yaml:"pages,omitempty"`
	Titles       []string `yaml:"titles,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a step with Op (and Outcome, if set) ran
	// - "trace_order": Ops appear in order
	// - "trace_count": Op (with Outcome, if set) ran exactly Count times
	// - "items": the stored items of Kind in Recipe are exactly Texts
	// - "ids_kept": the stored items with Texts still have their first ids
	// - "recipe_missing": Recipe no longer exists
	Type string `yaml:"type"`

	Op      string   `yaml:"op,omitempty"`
	Outcome string   `yaml:"outcome,omitempty"`
	Count   int      `yaml:"count,omitempty"`
	Ops     []string `yaml:"ops,omitempty"`
	Recipe  string   `yaml:"recipe,omitempty"`
	Kind    string   `yaml:"kind,omitempty"`
	Texts   []string `yaml:"texts,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertItems         = "items"
	AssertIDsKept       = "ids_kept"
	AssertRecipeMissing = "recipe_missing"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and per-op requirements.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	seen := make(map[string]bool, len(s.Collections))
	for _, c := range s.Collections {
		if seen[c] {
			return fmt.Errorf("collection %q declared twice", c)
		}
		seen[c] = true
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s Step) error {
	switch s.Op {
	case OpCreateRecipe:
		if s.Collection == "" || s.Create == nil {
			return fmt.Errorf("steps[%d]: create_recipe requires collection and create", index)
		}
	case OpUpdateRecipe:
		if s.Recipe == "" || s.Update == nil {
			return fmt.Errorf("steps[%d]: update_recipe requires recipe and update", index)
		}
	case OpGetRecipe, OpDeleteRecipe:
		if s.Recipe == "" {
			return fmt.Errorf("steps[%d]: %s requires recipe", index, s.Op)
		}
	case OpSetLiked:
		if s.Recipe == "" || s.Liked == nil {
			return fmt.Errorf("steps[%d]: set_liked requires recipe and liked", index)
		}
	case OpList:
		if s.List == nil {
			return fmt.Errorf("steps[%d]: list requires list", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertItems, AssertIDsKept:
		if a.Recipe == "" {
			return fmt.Errorf("assertions[%d]: recipe is required for %s", index, a.Type)
		}
		if !model.ItemKind(a.Kind).Valid() {
			return fmt.Errorf("assertions[%d]: kind must be instruction or ingredient, got %q", index, a.Kind)
		}
	case AssertRecipeMissing:
		if a.Recipe == "" {
			return fmt.Errorf("assertions[%d]: recipe is required for recipe_missing", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
