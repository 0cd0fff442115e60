package oracle

import (
	"fmt"
	"strings"

	"github.com/relatahq/oracle/internal/database"
)

const (
	conversationMaxTopics   = 3
	conversationMaxContacts = 5
)

// synthesizeConversationPrep builds talking points. When the query names a
// person ("talking points for Jane"), it prepares for that contact
// specifically; otherwise it offers generic openers for the top contacts.
func synthesizeConversationPrep(snap *ContextSnapshot, rawQuery string) Answer {
	if name := extractNameAfterFor(rawQuery); name != "" {
		if contact := matchContactByName(snap.Contacts, name); contact != nil {
			return contactTalkingPoints(snap, contact)
		}
	}
	return genericTalkingPoints(snap)
}

// extractNameAfterFor pulls the token(s) following "for " out of the query,
// trimming trailing punctuation. All searching and slicing happens on the
// lowered query: lowering can change byte lengths, so indexes into it must
// never be applied to the raw string. Matching downstream is
// case-insensitive, so the lowered name is fine to return.
func extractNameAfterFor(rawQuery string) string {
	q := strings.ToLower(rawQuery)
	idx := strings.Index(q, "for ")
	if idx == -1 {
		return ""
	}
	name := strings.TrimSpace(q[idx+len("for "):])
	name = strings.TrimRight(name, "?.!,")
	// Cut at common trailing clauses ("for Jane about the renewal").
	for _, stop := range []string{" about ", " regarding ", " on "} {
		if cut := strings.Index(name, stop); cut != -1 {
			name = name[:cut]
		}
	}
	return strings.TrimSpace(name)
}

func matchContactByName(contacts []database.Contact, name string) *database.Contact {
	needle := strings.ToLower(name)
	for i := range contacts {
		if strings.Contains(strings.ToLower(contacts[i].Name), needle) {
			return &contacts[i]
		}
	}
	return nil
}

func contactTalkingPoints(snap *ContextSnapshot, contact *database.Contact) Answer {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Talking points for %s:\n", contact.Name))
	if contact.Title != "" || contact.Company != "" {
		b.WriteString(fmt.Sprintf("- Role: %s\n", strings.TrimSpace(contact.Title+" at "+contact.Company)))
	}
	b.WriteString(fmt.Sprintf("- Relationship strength: %d/10\n", contact.RelationshipStrength))

	topics := 0
	for _, in := range snap.RecentInteractions {
		if in.ContactID != contact.ID || in.Subject == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("- Follow up on: %s\n", in.Subject))
		topics++
		if topics == conversationMaxTopics {
			break
		}
	}
	if topics == 0 {
		b.WriteString("- No recent interactions; open by catching up on their current priorities.\n")
	}

	insights := []string{
		fmt.Sprintf("You have %d recent interactions with %s to draw on.", countInteractionsFor(snap, contact.ID), contact.Name),
	}
	if contact.Company != "" {
		peers := 0
		for _, c := range snap.Contacts {
			if c.ID != contact.ID && strings.EqualFold(c.Company, contact.Company) {
				peers++
			}
		}
		if peers > 0 {
			insights = append(insights, fmt.Sprintf("%d other contacts work at %s.", peers, contact.Company))
		}
	}

	return Answer{
		Text:       strings.TrimRight(b.String(), "\n"),
		Confidence: intentConfidence[IntentConversationPrep],
		Sources: []SourceAttribution{
			contactSource(90),
			interactionSource(80),
		},
		Insights: insights,
	}
}

func countInteractionsFor(snap *ContextSnapshot, contactID int64) int {
	n := 0
	for _, in := range snap.RecentInteractions {
		if in.ContactID == contactID {
			n++
		}
	}
	return n
}

func genericTalkingPoints(snap *ContextSnapshot) Answer {
	top := snap.Contacts
	if len(top) > conversationMaxContacts {
		top = top[:conversationMaxContacts]
	}

	var b strings.Builder
	if len(top) == 0 {
		b.WriteString("No contacts found to prepare talking points for.")
	} else {
		b.WriteString("Conversation starters for your top contacts:\n")
		for _, c := range top {
			opener := "ask what they are focused on right now"
			if subject := latestSubjectForContact(snap, c.ID); subject != "" {
				opener = fmt.Sprintf("follow up on %q", subject)
			} else if c.Company != "" {
				opener = fmt.Sprintf("ask how things are going at %s", c.Company)
			}
			b.WriteString(fmt.Sprintf("- %s: %s\n", c.Name, opener))
		}
	}

	insights := []string{
		fmt.Sprintf("Talking points cover your %d strongest relationships.", len(top)),
	}
	if len(snap.RecentInteractions) > 0 {
		insights = append(insights, fmt.Sprintf("%d recent interactions provide conversation context.", len(snap.RecentInteractions)))
	}

	return Answer{
		Text:       strings.TrimRight(b.String(), "\n"),
		Confidence: intentConfidence[IntentConversationPrep],
		Sources: []SourceAttribution{
			contactSource(90),
			interactionSource(80),
		},
		Insights: insights,
	}
}
