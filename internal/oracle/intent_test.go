// Package oracle_test tests the query engine: intent classification,
// context aggregation, and answer synthesis.
package oracle_test

import (
	"testing"

	"github.com/relatahq/oracle/internal/oracle"
)

// TestClassify checks the ordered keyword rules, including rule precedence
// when a query matches more than one rule.
func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  oracle.Intent
	}{
		{
			name:  "Prioritize keyword",
			query: "Who should I prioritize this week?",
			want:  oracle.IntentPrioritize,
		},
		{
			name:  "Priority keyword",
			query: "What are my top priority relationships?",
			want:  oracle.IntentPrioritize,
		},
		{
			name:  "Meeting keyword",
			query: "What do I need to know for my 3pm meeting?",
			want:  oracle.IntentMeetingContext,
		},
		{
			name:  "Context keyword",
			query: "Give me context on tomorrow's call",
			want:  oracle.IntentMeetingContext,
		},
		{
			name:  "Attention keyword",
			query: "Which relationships need attention?",
			want:  oracle.IntentAttentionNeeded,
		},
		{
			name:  "Neglected keyword",
			query: "Who have I neglected lately?",
			want:  oracle.IntentAttentionNeeded,
		},
		{
			name:  "Opportunity keyword singular",
			query: "Is there an opportunity I should act on?",
			want:  oracle.IntentOpportunities,
		},
		{
			name:  "Opportunities keyword plural",
			query: "Show me open opportunities",
			want:  oracle.IntentOpportunities,
		},
		{
			name:  "Analytics keyword",
			query: "Show me my relationship analytics",
			want:  oracle.IntentAnalytics,
		},
		{
			name:  "Effectiveness keyword",
			query: "How is my networking effectiveness trending?",
			want:  oracle.IntentAnalytics,
		},
		{
			name:  "Talking points phrase",
			query: "Give me talking points for Jane",
			want:  oracle.IntentConversationPrep,
		},
		{
			name:  "Conversation keyword",
			query: "Help me start a conversation with Bob",
			want:  oracle.IntentConversationPrep,
		},
		{
			name:  "No keyword falls back to general",
			query: "Tell me something useful",
			want:  oracle.IntentGeneral,
		},
		{
			name:  "Empty query is general",
			query: "",
			want:  oracle.IntentGeneral,
		},
		{
			name:  "Case insensitive matching",
			query: "WHO SHOULD I PRIORITIZE?",
			want:  oracle.IntentPrioritize,
		},
		{
			name:  "Priority beats opportunity on rule order",
			query: "Which opportunity is my top priority?",
			want:  oracle.IntentPrioritize,
		},
		{
			name:  "Meeting beats conversation on rule order",
			query: "Talking points for my meeting",
			want:  oracle.IntentMeetingContext,
		},
		{
			name:  "Attention beats analytics on rule order",
			query: "Analytics on who needs attention",
			want:  oracle.IntentAttentionNeeded,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := oracle.Classify(tc.query); got != tc.want {
				t.Errorf("Classify(%q) = %q, want %q", tc.query, got, tc.want)
			}
		})
	}
}
