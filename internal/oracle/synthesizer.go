package oracle

// synthFunc is a pure function producing an Answer from a snapshot and the
// raw query. Feeding the same snapshot twice must yield identical answers.
type synthFunc func(snap *ContextSnapshot, rawQuery string) Answer

// synthesizers maps each intent to its synthesis strategy.
var synthesizers = map[Intent]synthFunc{
	IntentPrioritize:       synthesizePrioritize,
	IntentMeetingContext:   synthesizeMeetingContext,
	IntentAttentionNeeded:  synthesizeAttentionNeeded,
	IntentOpportunities:    synthesizeOpportunities,
	IntentAnalytics:        synthesizeAnalytics,
	IntentConversationPrep: synthesizeConversationPrep,
	IntentGeneral:          synthesizeGeneral,
}

// Synthesize produces the Answer for the given intent. Unknown intents fall
// back to the general synthesizer so the caller always gets a well-formed
// answer.
func Synthesize(intent Intent, snap *ContextSnapshot, rawQuery string) Answer {
	fn, ok := synthesizers[intent]
	if !ok {
		fn = synthesizeGeneral
	}
	return fn(snap, rawQuery)
}
