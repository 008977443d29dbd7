package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/thereayou/vbase/internal/models"
	"github.com/thereayou/vbase/internal/services"
)

func formatUser(u *models.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"external_id": u.ExternalID,
		"name":        u.Name,
		"email":       u.Email,
		"created_at":  u.CreatedAt,
	}
}

func formatWorkspace(ws *models.Workspace) gin.H {
	return gin.H{
		"id":         ws.ID,
		"name":       ws.Name,
		"slug":       ws.Slug,
		"owner_id":   ws.OwnerID,
		"created_at": ws.CreatedAt,
	}
}

func formatRoom(room *models.Room) gin.H {
	return gin.H{
		"id":           room.ID,
		"workspace_id": room.WorkspaceID,
		"name":         room.Name,
		"type":         room.Type,
		"created_by":   room.CreatedBy,
		"created_at":   room.CreatedAt,
	}
}

func formatArtifact(a *models.Artifact) gin.H {
	response := gin.H{
		"id":             a.ID,
		"workspace_id":   a.WorkspaceID,
		"room_id":        a.RoomID,
		"kind":           a.Kind,
		"name":           a.Name,
		"session_id":     a.SessionID(),
		"created_by":     a.CreatedBy,
		"last_edited_by": a.LastEditedBy,
		"created_at":     a.CreatedAt,
		"updated_at":     a.UpdatedAt,
	}
	if a.Kind == models.KindCode {
		response["language"] = a.Language
	}
	return response
}

func formatArtifactView(v *services.ArtifactView) gin.H {
	response := formatArtifact(&v.Artifact)
	response["created_by_name"] = v.CreatorName
	response["last_edited_by_name"] = v.LastEditorName
	return response
}

func formatMeeting(m *models.Meeting) gin.H {
	return gin.H{
		"id":                m.ID,
		"workspace_id":      m.WorkspaceID,
		"room_id":           m.RoomID,
		"name":              m.Name,
		"status":            m.Status,
		"participant_count": m.ParticipantCount,
		"session_name":      m.SessionName,
		"created_by":        m.CreatedBy,
		"created_at":        m.CreatedAt,
	}
}

func formatChannel(ch *models.Channel) gin.H {
	response := gin.H{
		"id":           ch.ID,
		"workspace_id": ch.WorkspaceID,
		"name":         ch.Name,
		"type":         ch.Type,
		"created_by":   ch.CreatedBy,
		"created_at":   ch.CreatedAt,
	}
	if ch.RoomID != nil {
		response["room_id"] = ch.RoomID
	}
	if ch.ArtifactID != nil {
		response["artifact_id"] = ch.ArtifactID
		response["artifact_kind"] = ch.ArtifactKind
	}
	if ch.MeetingID != nil {
		response["meeting_id"] = ch.MeetingID
	}
	if ch.DirectLow != nil && ch.DirectHigh != nil {
		response["participants"] = []interface{}{ch.DirectLow, ch.DirectHigh}
	}
	return response
}

func formatMessage(msg *models.Message) gin.H {
	response := gin.H{
		"id":          msg.ID,
		"channel_id":  msg.ChannelID,
		"author_id":   msg.AuthorID,
		"author_name": msg.AuthorName,
		"content":     msg.Content,
		"reactions":   msg.Reactions,
		"seen_by":     msg.SeenBy,
		"created_at":  msg.CreatedAt,
	}
	if msg.EditedAt != nil {
		response["edited_at"] = msg.EditedAt
	}
	return response
}

func formatInvitation(inv *models.Invitation) gin.H {
	return gin.H{
		"id":           inv.ID,
		"workspace_id": inv.WorkspaceID,
		"email":        inv.Email,
		"role":         inv.Role,
		"invited_by":   inv.InvitedBy,
		"created_at":   inv.CreatedAt,
		"expires_at":   inv.ExpiresAt,
	}
}
