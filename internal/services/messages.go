package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/models"
)

const (
	DefaultMessagePage = 50
	MaxMessagePage     = 100
)

// SendMessage appends a message. The author's current name is cached on
// the message.
func (s *Service) SendMessage(ctx context.Context, channelID uuid.UUID, author *models.User, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, newError(KindInvalidState, "message content is required")
	}

	var msg *models.Message
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		if _, err := authorizeChannel(tx, channelID, author.ID); err != nil {
			return err
		}
		msg = &models.Message{
			ChannelID:  channelID,
			AuthorID:   author.ID,
			AuthorName: author.Name,
			Content:    content,
			CreatedAt:  s.now(),
		}
		if err := tx.SaveMessage(msg); err != nil {
			return fmt.Errorf("save message: %w", err)
		}
		// sending implies having read everything before
		return tx.UpsertLastRead(author.ID, channelID, msg.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages pages backwards from beforeID, returning oldest first.
func (s *Service) ListMessages(ctx context.Context, channelID, callerID uuid.UUID, limit int, beforeID *uuid.UUID) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultMessagePage
	}
	if limit > MaxMessagePage {
		limit = MaxMessagePage
	}

	db := s.db.WithContext(ctx)
	if _, err := authorizeChannel(db, channelID, callerID); err != nil {
		return nil, err
	}
	return db.GetChannelMessages(channelID, limit, beforeID)
}

// EditMessage replaces the content of the caller's own message.
func (s *Service) EditMessage(ctx context.Context, messageID, callerID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, newError(KindInvalidState, "message content is required")
	}

	var msg *models.Message
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		var err error
		msg, err = ownMessage(tx, messageID, callerID, "edit")
		if err != nil {
			return err
		}
		now := s.now()
		msg.Content = content
		msg.EditedAt = &now
		return tx.UpdateMessage(msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// DeleteMessage removes the caller's own message and returns it.
func (s *Service) DeleteMessage(ctx context.Context, messageID, callerID uuid.UUID) (*models.Message, error) {
	var msg *models.Message
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		var err error
		msg, err = ownMessage(tx, messageID, callerID, "delete")
		if err != nil {
			return err
		}
		return tx.DeleteMessage(messageID)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func ownMessage(tx *database.Database, messageID, callerID uuid.UUID, verb string) (*models.Message, error) {
	msg, err := tx.GetMessage(messageID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, notFound("message")
		}
		return nil, err
	}
	if msg.AuthorID != callerID {
		return nil, forbidden("you can only %s your own messages", verb)
	}
	return msg, nil
}

// ToggleReaction adds the caller's reaction of the given kind, or removes
// it when already present.
func (s *Service) ToggleReaction(ctx context.Context, messageID, callerID uuid.UUID, reaction string) (*models.Message, error) {
	reaction = strings.TrimSpace(reaction)
	if reaction == "" {
		return nil, newError(KindInvalidState, "reaction is required")
	}

	var msg *models.Message
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		var err error
		msg, err = accessibleMessage(tx, messageID, callerID)
		if err != nil {
			return err
		}

		if msg.Reactions == nil {
			msg.Reactions = map[string][]uuid.UUID{}
		}
		users := msg.Reactions[reaction]
		if i := indexOf(users, callerID); i >= 0 {
			users = append(users[:i], users[i+1:]...)
		} else {
			users = append(users, callerID)
		}
		if len(users) == 0 {
			delete(msg.Reactions, reaction)
		} else {
			msg.Reactions[reaction] = users
		}
		return tx.UpdateMessage(msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkSeen records that the caller saw the message. Repeated calls keep
// the first timestamp; authors do not see their own messages.
func (s *Service) MarkSeen(ctx context.Context, messageID, callerID uuid.UUID) (*models.Message, error) {
	var msg *models.Message
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		var err error
		msg, err = accessibleMessage(tx, messageID, callerID)
		if err != nil {
			return err
		}
		if msg.AuthorID == callerID {
			return nil
		}
		for _, e := range msg.SeenBy {
			if e.UserID == callerID {
				return nil
			}
		}
		msg.SeenBy = append(msg.SeenBy, models.SeenEntry{UserID: callerID, SeenAt: s.now()})
		return tx.UpdateMessage(msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func accessibleMessage(tx *database.Database, messageID, callerID uuid.UUID) (*models.Message, error) {
	msg, err := tx.GetMessage(messageID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, notFound("message")
		}
		return nil, err
	}
	if _, err := authorizeChannel(tx, msg.ChannelID, callerID); err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkRead moves the caller's read pointer for the channel to now.
func (s *Service) MarkRead(ctx context.Context, channelID, callerID uuid.UUID) error {
	return s.db.Transaction(ctx, func(tx *database.Database) error {
		if _, err := authorizeChannel(tx, channelID, callerID); err != nil {
			return err
		}
		return tx.UpsertLastRead(callerID, channelID, s.now())
	})
}

func (s *Service) UnreadCount(ctx context.Context, channelID, callerID uuid.UUID) (int64, error) {
	db := s.db.WithContext(ctx)
	if _, err := authorizeChannel(db, channelID, callerID); err != nil {
		return 0, err
	}
	return unreadCount(db, channelID, callerID)
}

func unreadCount(db *database.Database, channelID, userID uuid.UUID) (int64, error) {
	var after time.Time
	receipt, err := db.GetLastRead(userID, channelID)
	switch {
	case err == nil:
		after = receipt.LastReadAt
	case !database.IsNotFound(err):
		return 0, err
	}
	return db.CountUnread(channelID, userID, after)
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
