package harness

import "github.com/roach88/mise/internal/model"

// OutcomeOK is the outcome of a step that succeeded. Failed steps record
// the error code instead.
const OutcomeOK = "ok"

// TraceEvent records one executed step.
type TraceEvent struct {
	Step         int      `json:"step"`
	Op           string   `json:"op"`
	Target       string   `json:"target,omitempty"`
	Outcome      string   `json:"outcome"`
	Title        string   `json:"title,omitempty"`
	Liked        bool     `json:"liked,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Pages        []int    `json:"pages,omitempty"`
	Titles       []string `json:"titles,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step met its expectation and all assertions held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addEvent(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}

// outcome returns OutcomeOK for nil and the error code otherwise.
func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := model.CodeOf(err); code != "" {
		return string(code)
	}
	return "ERROR"
}

func itemTexts(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}
