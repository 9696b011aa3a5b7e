package repositories

// Store keys, one blob per collection.
const (
	ConversationsKey = "@MessagingApp:conversations"
	MessagesKey      = "@MessagingApp:messages"
	CurrentUserKey   = "@MessagingApp:currentUser"
	UsersKey         = "@MessagingApp:users"
)

// Keys lists every key the repositories write.
var Keys = []string{ConversationsKey, MessagesKey, CurrentUserKey, UsersKey}
