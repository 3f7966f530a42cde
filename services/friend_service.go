package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"zyncchat-api/metrics"
	"zyncchat-api/models"
	"zyncchat-api/repositories"
	"zyncchat-api/utils"
)

// FriendService drives the friend request state machine. pending is the
// only non-terminal state; accepting writes both friendship sides in the
// same transaction as the status change.
type FriendService struct {
	db       *gorm.DB
	users    *repositories.UserRepository
	requests *repositories.FriendRepository
	chat     ChatUserSyncer
	logger   *zap.Logger
}

func NewFriendService(db *gorm.DB, users *repositories.UserRepository, requests *repositories.FriendRepository, chat ChatUserSyncer, logger *zap.Logger) *FriendService {
	return &FriendService{db: db, users: users, requests: requests, chat: chat, logger: logger}
}

// FriendRequestLists is the recipient side view of requests.
type FriendRequestLists struct {
	Incoming []models.FriendRequest
	Accepted []models.FriendRequest
}

// SendRequest creates a pending request from sender to recipient. A request
// that was rejected earlier does not block a new one.
func (s *FriendService) SendRequest(ctx context.Context, senderID, recipientID string) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, utils.InvalidArgument("Cannot send request to yourself")
	}

	var created *models.FriendRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		requests := s.requests.WithTx(tx)

		if _, err := users.FindByID(ctx, recipientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("User not found")
			}
			return err
		}

		friends, err := requests.AreFriends(ctx, senderID, recipientID)
		if err != nil {
			return err
		}
		if friends {
			return utils.Conflict("You are already friends with this user")
		}

		pending, err := requests.HasPendingRequest(ctx, senderID, recipientID)
		if err != nil {
			return err
		}
		if pending {
			return utils.Conflict("Request already sent")
		}

		req := &models.FriendRequest{
			ID:          uuid.NewString(),
			SenderID:    senderID,
			RecipientID: recipientID,
			Status:      models.FriendRequestStatusPending,
		}
		if err := requests.CreateRequest(ctx, req); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, wrapUnexpected("send friend request", err)
	}

	metrics.RecordFriendRequest(string(models.FriendRequestStatusPending))
	return created, nil
}

// AcceptRequest moves a pending request to accepted and links both users.
func (s *FriendService) AcceptRequest(ctx context.Context, requestID, actingUserID string) (*models.FriendRequest, error) {
	req, err := s.transition(ctx, requestID, actingUserID, models.FriendRequestStatusAccepted, func(tx *gorm.DB, req *models.FriendRequest) error {
		return s.requests.WithTx(tx).AddFriendPair(ctx, req.SenderID, req.RecipientID)
	})
	if err != nil {
		return nil, err
	}

	s.syncChatUsers(ctx, req.SenderID, req.RecipientID)
	return req, nil
}

// RejectRequest moves a pending request to rejected. Friend sets are untouched.
func (s *FriendService) RejectRequest(ctx context.Context, requestID, actingUserID string) (*models.FriendRequest, error) {
	return s.transition(ctx, requestID, actingUserID, models.FriendRequestStatusRejected, nil)
}

func (s *FriendService) transition(
	ctx context.Context,
	requestID, actingUserID string,
	to models.FriendRequestStatus,
	sideEffect func(tx *gorm.DB, req *models.FriendRequest) error,
) (*models.FriendRequest, error) {
	var result *models.FriendRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.requests.WithTx(tx)

		req, err := requests.FindRequest(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Request not found")
			}
			return err
		}

		verb := "accept"
		if to == models.FriendRequestStatusRejected {
			verb = "reject"
		}
		if req.RecipientID != actingUserID {
			return utils.Forbidden(fmt.Sprintf("Not authorized to %s this request", verb))
		}
		if req.Status != models.FriendRequestStatusPending {
			return utils.Conflict(fmt.Sprintf("Request already %s", req.Status))
		}

		// a concurrent accept or reject may have won since the read
		moved, err := requests.TransitionRequest(ctx, req.ID, models.FriendRequestStatusPending, to)
		if err != nil {
			return err
		}
		if !moved {
			return utils.Conflict("Request was already resolved")
		}
		req.Status = to

		if sideEffect != nil {
			if err := sideEffect(tx, req); err != nil {
				return err
			}
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, wrapUnexpected("resolve friend request", err)
	}

	metrics.RecordFriendRequest(string(to))
	return result, nil
}

func (s *FriendService) syncChatUsers(ctx context.Context, ids ...string) {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			s.logger.Warn("chat sync: load user", zap.String("user_id", id), zap.Error(err))
			continue
		}
		users = append(users, u)
	}
	s.chat.UpsertUsers(ctx, users...)
}

// Requests returns the pending and accepted requests addressed to the user.
func (s *FriendService) Requests(ctx context.Context, userID string) (*FriendRequestLists, error) {
	incoming, err := s.requests.IncomingPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load incoming requests: %w", err)
	}
	accepted, err := s.requests.AcceptedIncoming(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load accepted requests: %w", err)
	}
	return &FriendRequestLists{Incoming: incoming, Accepted: accepted}, nil
}

func (s *FriendService) OutgoingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	reqs, err := s.requests.OutgoingPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load outgoing requests: %w", err)
	}
	return reqs, nil
}

func (s *FriendService) Friends(ctx context.Context, userID string) ([]models.UserSummary, error) {
	friends, err := s.requests.Friends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load friends: %w", err)
	}
	return friends, nil
}

// wrapUnexpected leaves *AppError values untouched and annotates the rest.
func wrapUnexpected(op string, err error) error {
	if _, ok := utils.AsAppError(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
