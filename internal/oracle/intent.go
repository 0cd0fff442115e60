package oracle

import "strings"

// Intent is one of the fixed set of recognized question categories.
type Intent string

// Recognized query intents.
const (
	IntentPrioritize       Intent = "prioritize"
	IntentMeetingContext   Intent = "meeting_context"
	IntentAttentionNeeded  Intent = "attention_needed"
	IntentOpportunities    Intent = "opportunities"
	IntentAnalytics        Intent = "analytics"
	IntentConversationPrep Intent = "conversation_prep"
	IntentGeneral          Intent = "general"
)

// intentRule pairs an intent with its trigger phrases. Rules are evaluated
// top to bottom; the first phrase found in the query wins. Keeping this as
// a table rather than branching code means tests can enumerate every rule.
type intentRule struct {
	intent  Intent
	phrases []string
}

var intentRules = []intentRule{
	{IntentPrioritize, []string{"prioritize", "priority"}},
	{IntentMeetingContext, []string{"meeting", "context"}},
	{IntentAttentionNeeded, []string{"attention", "neglected"}},
	{IntentOpportunities, []string{"opportunity", "opportunities"}},
	{IntentAnalytics, []string{"analytics", "effectiveness"}},
	{IntentConversationPrep, []string{"talking points", "conversation"}},
}

// Classify maps free-text input to a query intent using the ordered rule
// table. Matching is case-insensitive substring containment. Queries that
// match no rule classify as IntentGeneral.
func Classify(rawQuery string) Intent {
	q := strings.ToLower(rawQuery)
	for _, rule := range intentRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(q, phrase) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}
