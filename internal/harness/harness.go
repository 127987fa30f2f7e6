package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/recipes"
	"github.com/roach88/mise/internal/store"
	"github.com/roach88/mise/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and id sequence.
type Harness struct {
	store  *store.Store
	svc    *recipes.Service
	logger *slog.Logger

	collections map[string]string // alias -> id
	tenant      model.TenantContext

	recipeIDs map[string]string           // alias -> id, kept after delete
	recipes   map[string]model.RecipeFull // alias -> last observed state
	firstIDs  map[string]map[model.ItemKind]map[string]string

	lastCursor string
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. The
// returned error reports a broken scenario (for example a keep reference
// to an item that does not exist); failed expectations and assertions are
// recorded in the result instead.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		store: st,
		svc: recipes.New(st, testutil.NewSequentialGenerator(),
			recipes.WithClock(testutil.NewClock()),
			recipes.WithLogger(logger),
		),
		logger:      logger,
		collections: make(map[string]string),
		recipeIDs:   make(map[string]string),
		recipes:     make(map[string]model.RecipeFull),
		firstIDs:    make(map[string]map[model.ItemKind]map[string]string),
	}

	ctx := context.Background()

	for _, alias := range scenario.Collections {
		c, err := h.svc.CreateCollection(ctx, alias)
		if err != nil {
			return nil, fmt.Errorf("failed to create collection %q: %w", alias, err)
		}
		h.collections[alias] = c.ID
	}
	h.tenant = h.tenantFor(scenario.Tenant)

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i+1, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Service:  h.svc,
		Tenant:   h.tenantFor(scenario.Collections),
		Resolve:  h.recipeID,
		FirstIDs: h.firstIDs,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// executeStep runs one step, records its trace event and checks its
// expect clause.
func (h *Harness) executeStep(ctx context.Context, n int, step Step, result *Result) error {
	tenant := h.tenant
	if step.Tenant != nil {
		tenant = h.tenantFor(step.Tenant)
	}

	alias := step.Recipe
	if step.Op == OpCreateRecipe {
		alias = step.As
	}
	event := TraceEvent{Step: n, Op: step.Op, Target: alias}

	var (
		full  model.RecipeFull
		found bool
		opErr error
	)
	switch step.Op {
	case OpCreateRecipe:
		full, opErr = h.svc.CreateRecipe(ctx, tenant, h.collectionID(step.Collection), *step.Create)
		if opErr == nil && alias != "" {
			h.recipeIDs[alias] = full.ID
		}
		found = opErr == nil
	case OpUpdateRecipe:
		payload, err := h.buildUpdate(step.Recipe, *step.Update)
		if err != nil {
			return err
		}
		full, opErr = h.svc.UpdateRecipe(ctx, tenant, h.recipeID(step.Recipe), payload)
		found = opErr == nil
	case OpGetRecipe:
		full, opErr = h.svc.GetRecipe(ctx, tenant, h.recipeID(step.Recipe))
		found = opErr == nil
	case OpSetLiked:
		full, opErr = h.svc.SetLiked(ctx, tenant, h.recipeID(step.Recipe), *step.Liked)
		found = opErr == nil
	case OpDeleteRecipe:
		opErr = h.svc.DeleteRecipe(ctx, tenant, h.recipeID(step.Recipe))
		if opErr == nil {
			delete(h.recipes, alias)
		}
	case OpList:
		opErr = h.list(ctx, tenant, *step.List, &event)
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	if found {
		h.observe(alias, full)
		event.Title = full.Title
		event.Liked = full.Liked
		event.Instructions = itemTexts(full.Instructions)
		event.Ingredients = itemTexts(full.Ingredients)
	}
	event.Outcome = outcome(opErr)
	result.addEvent(event)

	h.logger.Info("step completed", "step", n, "op", step.Op, "outcome", event.Outcome)
	checkExpect(n, step, event, opErr, result)
	return nil
}

// list runs a list step and fills the page sizes and titles of event.
func (h *Harness) list(ctx context.Context, tenant model.TenantContext, spec ListSpec, event *TraceEvent) error {
	field, err := model.ParseSortField(spec.Sort)
	if err != nil {
		return err
	}
	order, err := model.ParseSortOrder(spec.Order)
	if err != nil {
		return err
	}

	cursor := ""
	if spec.Resume {
		cursor = h.lastCursor
	}

	var (
		pages  []int
		titles []string
	)
	for {
		page, err := h.svc.ListRecipes(ctx, tenant, recipes.ListRequest{
			Limit:     spec.Limit,
			SortField: field,
			SortOrder: order,
			Cursor:    cursor,
			Search:    spec.Search,
		})
		if err != nil {
			return err
		}
		pages = append(pages, len(page.Items))
		for _, r := range page.Items {
			titles = append(titles, r.Title)
		}
		h.lastCursor = page.NextCursor

		if !spec.All || !page.HasMore() {
			break
		}
		cursor = page.NextCursor
	}

	event.Pages = pages
	event.Titles = titles
	return nil
}

// buildUpdate resolves the item references of an update spec.
func (h *Harness) buildUpdate(alias string, spec UpdateSpec) (model.RecipeUpdate, error) {
	instructions, err := h.resolveItems(alias, model.KindInstruction, spec.Instructions)
	if err != nil {
		return model.RecipeUpdate{}, err
	}
	ingredients, err := h.resolveItems(alias, model.KindIngredient, spec.Ingredients)
	if err != nil {
		return model.RecipeUpdate{}, err
	}
	return model.RecipeUpdate{
		RecipeFields: spec.RecipeFields,
		Instructions: instructions,
		Ingredients:  ingredients,
	}, nil
}

func (h *Harness) resolveItems(alias string, kind model.ItemKind, refs []ItemRef) ([]model.ItemUpdate, error) {
	out := make([]model.ItemUpdate, 0, len(refs))
	for _, ref := range refs {
		item := model.ItemUpdate{ID: ref.ID, Text: ref.Text}
		if ref.Keep != "" {
			id, ok := h.currentItemID(alias, kind, ref.Keep)
			if !ok {
				return nil, fmt.Errorf("recipe %q has no %s %q to keep", alias, kind, ref.Keep)
			}
			item.ID = id
			if item.Text == "" {
				item.Text = ref.Keep
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (h *Harness) currentItemID(alias string, kind model.ItemKind, text string) (string, bool) {
	r, ok := h.recipes[alias]
	if !ok {
		return "", false
	}
	for _, it := range r.Items(kind) {
		if it.Text == text {
			return it.ID, true
		}
	}
	return "", false
}

// observe records the latest state of a recipe and the first id seen for
// each item text.
func (h *Harness) observe(alias string, full model.RecipeFull) {
	if alias == "" {
		return
	}
	h.recipes[alias] = full

	byKind, ok := h.firstIDs[alias]
	if !ok {
		byKind = make(map[model.ItemKind]map[string]string)
		h.firstIDs[alias] = byKind
	}
	for _, kind := range model.ItemKinds {
		if byKind[kind] == nil {
			byKind[kind] = make(map[string]string)
		}
		for _, it := range full.Items(kind) {
			if _, seen := byKind[kind][it.Text]; !seen {
				byKind[kind][it.Text] = it.ID
			}
		}
	}
}

// tenantFor builds a tenant seeing the given collection aliases.
func (h *Harness) tenantFor(aliases []string) model.TenantContext {
	ids := make([]string, len(aliases))
	for i, a := range aliases {
		ids[i] = h.collectionID(a)
	}
	return model.TenantContext{UserID: "scenario-user", CollectionIDs: ids}
}

// collectionID resolves a collection alias; unknown aliases are ids.
func (h *Harness) collectionID(alias string) string {
	if id, ok := h.collections[alias]; ok {
		return id
	}
	return alias
}

// recipeID resolves a recipe alias; unknown aliases are ids.
func (h *Harness) recipeID(alias string) string {
	if id, ok := h.recipeIDs[alias]; ok {
		return id
	}
	return alias
}

// checkExpect compares a step's event against its expect clause.
func checkExpect(n int, step Step, event TraceEvent, opErr error, result *Result) {
	prefix := fmt.Sprintf("step %d (%s)", n, step.Op)

	want := step.Expect
	if want == nil {
		want = &Expect{}
	}

	wantOutcome := OutcomeOK
	if want.Error != "" {
		wantOutcome = want.Error
	}
	if event.Outcome != wantOutcome {
		msg := fmt.Sprintf("%s: expected outcome %s, got %s", prefix, wantOutcome, event.Outcome)
		if opErr != nil {
			msg += fmt.Sprintf(" (%v)", opErr)
		}
		result.AddError(msg)
		return
	}

	if want.Title != "" && want.Title != event.Title {
		result.AddError(fmt.Sprintf("%s: expected title %q, got %q", prefix, want.Title, event.Title))
	}
	if want.Liked != nil && *want.Liked != event.Liked {
		result.AddError(fmt.Sprintf("%s: expected liked=%t, got %t", prefix, *want.Liked, event.Liked))
	}
	checkSlice(result, prefix, "instructions", want.Instructions, event.Instructions)
	checkSlice(result, prefix, "ingredients", want.Ingredients, event.Ingredients)
	checkSlice(result, prefix, "titles", want.Titles, event.Titles)
	if want.Pages != nil && !reflect.DeepEqual(want.Pages, event.Pages) {
		result.AddError(fmt.Sprintf("%s: expected pages %v, got %v", prefix, want.Pages, event.Pages))
	}
}

// checkSlice compares a string list when the expectation sets it. Nil and
// empty actual lists compare equal.
func checkSlice(result *Result, prefix, name string, want, got []string) {
	if want == nil {
		return
	}
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(want, got) {
		result.AddError(fmt.Sprintf("%s: expected %s %q, got %q", prefix, name, want, got))
	}
}
