package trickle

// Message is one conversation input item: a role and its text content.
// The Responses API accepts richer input shapes; this client models the
// text-only subset.
type Message struct {
	Role    Role
	Content string
}

// User returns a user message with the given text.
func User(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// Assistant returns an assistant message with the given text. Used when
// replaying prior turns as input.
func Assistant(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}
