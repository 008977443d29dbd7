package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/vbase/internal/handlers"
	"github.com/thereayou/vbase/internal/middleware"
	"github.com/thereayou/vbase/internal/services"
	"github.com/thereayou/vbase/internal/websocket"
	"github.com/thereayou/vbase/pkg/auth"
)

// Deps are the collaborators the routes are built from. Presence may be
// nil.
type Deps struct {
	Service        *services.Service
	JWTManager     *auth.JWTManager
	Blacklist      auth.Blacklist
	Hub            *websocket.Hub
	Presence       handlers.Presence
	Teardown       *handlers.Teardown
	WebhookSecret  string
	AllowedOrigins []string
}

func APIEndpoints(r *gin.Engine, d Deps) {
	authH := handlers.NewAuthHandler(d.JWTManager, d.Blacklist)
	workspaceH := handlers.NewWorkspaceHandler(d.Service, d.Hub)
	roomH := handlers.NewRoomHandler(d.Service, d.Teardown)
	artifactH := handlers.NewArtifactHandler(d.Service, d.Teardown)
	meetingH := handlers.NewMeetingHandler(d.Service, d.Presence, d.Teardown)
	channelH := handlers.NewChannelHandler(d.Service, d.Hub)
	messageH := handlers.NewHTTPMessageHandler(d.Service, d.Hub)
	wsH := handlers.NewWebSocketHandler(d.Hub, handlers.NewMessageHandler(d.Service, d.Hub), d.AllowedOrigins)
	webhookH := handlers.NewWebhookHandler(d.Service)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/webhooks/identity", middleware.WebhookSecret(d.WebhookSecret), webhookH.HandleIdentityEvent)

	r.GET("/ws", middleware.WSAuthMiddleware(d.JWTManager, d.Blacklist, d.Service), wsH.HandleWebSocket)

	api := r.Group("/api/v1", middleware.AuthMiddleware(d.JWTManager, d.Blacklist, d.Service))
	{
		api.GET("/me", authH.Me)
		api.POST("/auth/logout", authH.Logout)

		api.POST("/workspaces/current", workspaceH.EnsureCurrent)
		api.GET("/workspaces/:id/members", workspaceH.ListMembers)
		api.DELETE("/workspaces/:id/members/:userId", workspaceH.RemoveMember)
		api.POST("/workspaces/:id/invitations", workspaceH.Invite)
		api.DELETE("/invitations/:id", workspaceH.RevokeInvitation)
		api.POST("/invitations/:id/accept", workspaceH.AcceptInvitation)

		api.GET("/workspaces/:id/rooms", roomH.ListRooms)
		api.POST("/workspaces/:id/rooms", roomH.CreateRoom)
		api.GET("/rooms/:id", roomH.GetRoom)
		api.PATCH("/rooms/:id", roomH.RenameRoom)
		api.DELETE("/rooms/:id", roomH.DeleteRoom)

		api.GET("/rooms/:id/artifacts", artifactH.ListArtifacts)
		api.POST("/rooms/:id/artifacts", artifactH.CreateArtifact)
		api.GET("/artifacts/:id", artifactH.GetArtifact)
		api.PATCH("/artifacts/:id", artifactH.RenameArtifact)
		api.DELETE("/artifacts/:id", artifactH.DeleteArtifact)
		api.POST("/artifacts/:id/edits", artifactH.RecordEdit)
		api.PUT("/artifacts/:id/content", artifactH.UpdateContent)
		api.POST("/artifacts/:id/channel", artifactH.OpenChannel)

		api.GET("/rooms/:id/meetings", meetingH.ListMeetings)
		api.POST("/rooms/:id/meetings", meetingH.CreateMeeting)
		api.GET("/meetings/:id", meetingH.GetMeeting)
		api.POST("/meetings/:id/join", meetingH.JoinMeeting)
		api.POST("/meetings/:id/leave", meetingH.LeaveMeeting)
		api.POST("/meetings/:id/end", meetingH.EndMeeting)
		api.POST("/meetings/:id/force-end", meetingH.ForceEndMeeting)
		api.POST("/meetings/:id/heartbeat", meetingH.Heartbeat)

		api.GET("/workspaces/:id/channels", channelH.ListChannels)
		api.POST("/workspaces/:id/direct", channelH.OpenDirect)
		api.GET("/channels/:id", channelH.GetChannel)
		api.DELETE("/channels/:id", channelH.DeleteChannel)
		api.GET("/channels/:id/messages", messageH.GetChannelMessages)
		api.POST("/channels/:id/messages", messageH.SendMessage)
		api.POST("/channels/:id/read", messageH.MarkRead)
		api.PATCH("/messages/:id", messageH.UpdateMessage)
		api.DELETE("/messages/:id", messageH.DeleteMessage)
		api.POST("/messages/:id/reactions", messageH.ToggleReaction)
		api.POST("/messages/:id/seen", messageH.MarkSeen)
	}
}
