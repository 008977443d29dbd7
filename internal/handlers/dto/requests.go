package dto

import "github.com/google/uuid"

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

type CreateRoomRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateArtifactRequest struct {
	Name     string `json:"name" binding:"required"`
	Language string `json:"language"`
}

type ContentRequest struct {
	Content string `json:"content"`
}

type CreateMeetingRequest struct {
	Name string `json:"name" binding:"required"`
}

type DirectChannelRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// MessagePayload is the body of a new or edited message, over HTTP and
// inside websocket frames.
type MessagePayload struct {
	Content string `json:"content" binding:"required"`
}

type ReactionRequest struct {
	Reaction string `json:"reaction" binding:"required"`
}

// MessageRef points a websocket frame at an existing message.
type MessageRef struct {
	MessageID uuid.UUID `json:"message_id"`
	Content   string    `json:"content,omitempty"`
}
