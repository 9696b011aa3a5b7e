package domain

// Snapshot is the full in-memory state handed to persistence after a mutation.
// A nil Users slice means the directory did not change.
type Snapshot struct {
	Conversations []Conversation
	Messages      []Message
	Users         []User
}
