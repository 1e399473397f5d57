package refine

import (
	"fmt"
	"strings"

	"github.com/voltlab/patchmind/internal/feedback"
	"github.com/voltlab/patchmind/internal/patch"
	"github.com/voltlab/patchmind/internal/rack"
)

// successMarker prefixes every successful refinement message.
const successMarker = "✨"

// troubleMessage is the catch-all reply when something inside the pipeline
// misbehaves. Parsing failures never escape RefinePatch as panics.
const troubleMessage = "I had trouble understanding that one. Could you describe the change a different way?"

// Result is the outcome of one refinement turn. Every failure path still
// returns a well-formed Result so callers drive UI state without error
// handling.
type Result struct {
	Success            bool
	UpdatedPatch       *patch.Patch
	Modification       *Modification
	Message            string
	NeedsClarification bool
	ImpossibleRequest  bool
}

// Engine sequences parse → impossibility check → clarification gate → map →
// validate → apply for one request. It holds only immutable collaborators
// and is safe to share across sessions.
type Engine struct {
	parser  *feedback.Parser
	gate    feedback.Gate
	mapper  *Mapper
	applier *Applier
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithParser swaps the feedback parser, typically one built with rule packs.
func WithParser(p *feedback.Parser) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.parser = p
		}
	}
}

// WithGate overrides the clarification gate.
func WithGate(g feedback.Gate) EngineOption {
	return func(e *Engine) {
		e.gate = g
	}
}

// WithMapper overrides the modification mapper.
func WithMapper(m *Mapper) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.mapper = m
		}
	}
}

// WithApplier overrides the modification applier.
func WithApplier(a *Applier) EngineOption {
	return func(e *Engine) {
		if a != nil {
			e.applier = a
		}
	}
}

// NewEngine builds an engine with default collaborators.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		parser:  feedback.NewParser(),
		gate:    feedback.NewGate(0),
		mapper:  NewMapper(),
		applier: NewApplier(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// RefinePatch runs one request/response cycle. Impossible requests and
// ambiguous feedback short-circuit with structured failures; anything
// unexpected is converted into the generic trouble message.
func (e *Engine) RefinePatch(p *patch.Patch, text string, rk rack.Rack) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Success: false, Message: troubleMessage}
		}
	}()

	fb := e.parser.Parse(text, p, rk)
	if imp := CheckImpossible(fb, rk); imp.Impossible {
		return Result{Success: false, ImpossibleRequest: true, Message: imp.Reason}
	}
	if e.gate.NeedsClarification(fb) {
		return Result{
			Success:            false,
			NeedsClarification: true,
			Message:            feedback.ClarificationQuestion(text),
		}
	}
	mod := e.mapper.Map(fb, p, rk)
	if verdict := Validate(mod, p, rk); !verdict.Valid {
		return Result{
			Success: false,
			Message: "I couldn't apply that: " + strings.Join(verdict.Issues, "; "),
		}
	}
	updated := e.applier.Apply(p, mod)
	return Result{
		Success:      true,
		UpdatedPatch: updated,
		Modification: &mod,
		Message:      fmt.Sprintf("%s %s", successMarker, mod.Description),
	}
}
