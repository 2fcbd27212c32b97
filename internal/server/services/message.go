package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/media"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	errInvalidUserID    = common.Validation("Invalid user id")
	errEmptyMessage     = common.Validation("Message text or image is required")
	errReceiverNotFound = common.NewError(common.ErrorNotFound, "Receiver not found")
)

// MessageService stores and reads direct messages. Delivery to live
// connections is the caller's job.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploader    media.Uploader
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, uploader media.Uploader) *MessageService {
	return &MessageService{db: db, repomanager: m, uploader: uploader}
}

// Send validates and persists a message from senderID to receiverID.
// An attached image is uploaded first and replaced by its URL.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, text, image string) (*models.Message, error) {
	if _, err := uuid.Parse(receiverID); err != nil {
		return nil, errInvalidUserID
	}

	text = strings.TrimSpace(text)
	image = strings.TrimSpace(image)
	if text == "" && image == "" {
		return nil, errEmptyMessage
	}

	if _, err := s.repomanager.Users(s.db).GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errReceiverNotFound
		}
		return nil, fmt.Errorf("send message: %w", err)
	}

	var imageURL string
	if image != "" {
		url, err := s.uploader.Upload(ctx, image)
		if err != nil {
			if _, ok := common.MessageOf(err); ok {
				return nil, err
			}
			return nil, fmt.Errorf("send message: upload: %w", err)
		}
		imageURL = url
	}

	msg, err := s.repomanager.Messages(s.db).Create(ctx, &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      imageURL,
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errReceiverNotFound
		}
		return nil, fmt.Errorf("send message: %w", err)
	}
	return msg, nil
}

// Conversation returns the messages between userID and otherID, oldest first.
func (s *MessageService) Conversation(ctx context.Context, userID, otherID string) ([]*models.Message, error) {
	if _, err := uuid.Parse(otherID); err != nil {
		return nil, errInvalidUserID
	}
	msgs, err := s.repomanager.Messages(s.db).ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("conversation: %w", err)
	}
	return msgs, nil
}
