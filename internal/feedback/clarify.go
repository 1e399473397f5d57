package feedback

// DefaultClarifyThreshold is the confidence floor shared by the parser and
// the clarification gate: classifications below it are answered with a
// question rather than an edit.
const DefaultClarifyThreshold = 0.5

// Gate decides when feedback is too ambiguous to act on.
type Gate struct {
	threshold float64
}

// NewGate builds a gate; a non-positive threshold selects the default.
func NewGate(threshold float64) Gate {
	if threshold <= 0 {
		threshold = DefaultClarifyThreshold
	}
	return Gate{threshold: threshold}
}

// Threshold reports the confidence floor in use.
func (g Gate) Threshold() float64 {
	return g.threshold
}

// NeedsClarification is true iff the feedback was classified as a clarify
// intent or fell below the confidence threshold.
func (g Gate) NeedsClarification(fb ParsedFeedback) bool {
	return fb.Intent == IntentClarify || fb.Confidence < g.threshold
}

// ClarificationQuestion builds a follow-up question for ambiguous feedback.
// Every variant offers at least one concrete example pair so the user can
// answer with a single word.
func ClarificationQuestion(text string) string {
	norm := normalize(text)
	switch {
	case containsWord(norm, "better"):
		return "When you say better, which direction should I take it? For example: darker or brighter, more spacious or more dry?"
	case containsWord(norm, "fix"):
		return "What feels off right now? For example: is it too dark or too bright, too busy or too sparse?"
	default:
		return "Tell me a bit more about what you'd like to change — for example: darker or brighter, more movement or more steady?"
	}
}
