package domain

type Command interface {
	Target() string
}

// SendMessageCommand asks the session to post Content into a conversation.
type SendMessageCommand struct {
	ConversationID string `validate:"required"`
	SenderID       string `validate:"required"`
	Content        string `validate:"required"`
}

func (s SendMessageCommand) Target() string {
	return s.ConversationID
}

// CreateConversationCommand opens a thread between the acting user and ParticipantIDs.
// Name is only meaningful for groups, where it is the display fallback.
type CreateConversationCommand struct {
	ParticipantIDs []string `validate:"required,min=1,dive,required"`
	IsGroup        bool
	Name           *string
	Group          Group
}

func (c CreateConversationCommand) Target() string {
	if len(c.ParticipantIDs) == 0 {
		return ""
	}
	return c.ParticipantIDs[0]
}

// ProfileUpdate carries optional profile changes; nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	PhotoRef    *string
}
