// Package session owns the per-conversation state of a refinement: the
// current patch, its undo history, and the recent conversational context.
// The refinement engine itself is stateless; everything mutable lives here,
// owned by exactly one conversation, so the core needs no locking.
package session

import (
	"strings"

	"github.com/voltlab/patchmind/internal/feedback"
	"github.com/voltlab/patchmind/internal/history"
	"github.com/voltlab/patchmind/internal/logging"
	"github.com/voltlab/patchmind/internal/patch"
	"github.com/voltlab/patchmind/internal/rack"
	"github.com/voltlab/patchmind/internal/refine"
	"github.com/voltlab/patchmind/internal/transcript"
)

// maxContextLines bounds how much conversation feeds patch naming.
const maxContextLines = 10

// Kind tags what a turn did, so the UI can style replies.
type Kind string

const (
	KindRefined       Kind = "refined"
	KindClarify       Kind = "clarify"
	KindImpossible    Kind = "impossible"
	KindFailed        Kind = "failed"
	KindSaved         Kind = "saved"
	KindFresh         Kind = "fresh"
	KindVariations    Kind = "variations"
	KindUndone        Kind = "undone"
	KindNothingToUndo Kind = "nothing-to-undo"
)

// TurnResult is what one user utterance produced.
type TurnResult struct {
	Kind    Kind
	Message string
	// Patch is the current patch after the turn.
	Patch *patch.Patch
	// Save carries the persistence decision when Kind is KindSaved.
	Save *refine.SaveDecision
}

// Session drives one conversation about one patch.
type Session struct {
	engine  *refine.Engine
	hist    *history.History
	rack    rack.Rack
	initial *patch.Patch
	current *patch.Patch
	applied []refine.Modification
	context []string
	log     *logging.Logger
	scribe  *transcript.Transcript
}

// Option customizes session construction.
type Option func(*Session)

// WithEngine swaps the refinement engine, typically one configured from
// .patchmind/config.yaml.
func WithEngine(e *refine.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithHistoryCapacity overrides the undo window size.
func WithHistoryCapacity(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.hist = history.New(s.initial, history.WithCapacity(n))
		}
	}
}

// WithLogger attaches the project logger. Nil is fine; logging methods are
// nil-safe.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithTranscript attaches a conversation transcript.
func WithTranscript(t *transcript.Transcript) Option {
	return func(s *Session) {
		s.scribe = t
	}
}

// New starts a session for an externally generated patch and its rack.
func New(initial *patch.Patch, rk rack.Rack, opts ...Option) *Session {
	s := &Session{
		engine:  refine.NewEngine(),
		rack:    rk,
		initial: initial.Clone(),
		current: initial.Clone(),
	}
	s.hist = history.New(initial)
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Current returns the patch as of the last turn.
func (s *Session) Current() *patch.Patch {
	return s.current
}

// RefinementCount reports how many modifications have been applied.
func (s *Session) RefinementCount() int {
	return len(s.applied)
}

// History exposes the undo window for status views.
func (s *Session) History() *history.History {
	return s.hist
}

// HandleTurn processes one user utterance: meta-commands (undo, start
// fresh, variations, save) short-circuit, everything else goes through the
// refinement pipeline. It always returns a well-formed result.
func (s *Session) HandleTurn(text string) TurnResult {
	s.pushContext(text)
	s.scribe.Append(transcript.SpeakerUser, text)
	result := s.route(text)
	s.scribe.Append(transcript.SpeakerEngine, result.Message)
	s.log.Turn(string(result.Kind), text, result.Message)
	return result
}

func (s *Session) route(text string) TurnResult {
	if feedback.DetectUndoIntent(text) {
		return s.undo()
	}
	special := feedback.CheckSpecialIntents(text)
	switch {
	case special.StartFresh:
		return s.startFresh()
	case special.Variations:
		guidance := refine.HandleVariationsIntent()
		return TurnResult{Kind: KindVariations, Message: guidance.Message, Patch: s.current}
	case special.Save:
		return s.save()
	}
	return s.refineTurn(text)
}

func (s *Session) refineTurn(text string) TurnResult {
	res := s.engine.RefinePatch(s.current, text, s.rack)
	switch {
	case res.Success:
		s.current = res.UpdatedPatch
		s.hist.AddPatch(res.UpdatedPatch)
		if res.Modification != nil {
			s.applied = append(s.applied, *res.Modification)
		}
		return TurnResult{Kind: KindRefined, Message: res.Message, Patch: s.current}
	case res.ImpossibleRequest:
		return TurnResult{Kind: KindImpossible, Message: res.Message, Patch: s.current}
	case res.NeedsClarification:
		return TurnResult{Kind: KindClarify, Message: res.Message, Patch: s.current}
	default:
		return TurnResult{Kind: KindFailed, Message: res.Message, Patch: s.current}
	}
}

func (s *Session) undo() TurnResult {
	previous, ok := s.hist.Undo()
	if !ok {
		return TurnResult{
			Kind:    KindNothingToUndo,
			Message: "There's nothing earlier to go back to — this is the first version.",
			Patch:   s.current,
		}
	}
	s.current = previous
	if len(s.applied) > 0 {
		s.applied = s.applied[:len(s.applied)-1]
	}
	return TurnResult{
		Kind:    KindUndone,
		Message: "Rolled back to the previous version of the patch.",
		Patch:   s.current,
	}
}

func (s *Session) startFresh() TurnResult {
	guidance := refine.HandleStartFreshIntent()
	s.current = s.initial.Clone()
	s.hist = history.New(s.initial)
	s.applied = nil
	return TurnResult{Kind: KindFresh, Message: guidance.Message, Patch: s.current}
}

func (s *Session) save() TurnResult {
	decision := s.engine.HandleSaveIntent(s.current, s.applied, s.context)
	saved := s.current.Clone()
	saved.Saved = true
	saved.Metadata.Title = decision.PatchName
	s.current = saved
	return TurnResult{
		Kind:    KindSaved,
		Message: decision.ConfirmationMessage,
		Patch:   s.current,
		Save:    &decision,
	}
}

func (s *Session) pushContext(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	s.context = append(s.context, trimmed)
	if len(s.context) > maxContextLines {
		s.context = s.context[len(s.context)-maxContextLines:]
	}
}
