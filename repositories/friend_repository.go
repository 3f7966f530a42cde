package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zyncchat-api/models"
)

type FriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *FriendRepository) WithTx(tx *gorm.DB) *FriendRepository {
	return &FriendRepository{db: tx}
}

func selectSummary(db *gorm.DB) *gorm.DB {
	return db.Select(models.UserSummaryColumns)
}

func (r *FriendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *FriendRepository) FindRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// HasPendingRequest reports whether sender already has a pending request to recipient.
func (r *FriendRepository) HasPendingRequest(ctx context.Context, senderID, recipientID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("sender_id = ? AND recipient_id = ? AND status = ?", senderID, recipientID, models.FriendRequestStatusPending).
		Count(&count).Error
	return count > 0, err
}

// TransitionRequest moves a request from one status to another. It reports
// false when the request was no longer in the from state.
func (r *FriendRepository) TransitionRequest(ctx context.Context, id string, from, to models.FriendRequestStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncomingPending returns pending requests addressed to userID with the sender populated.
func (r *FriendRepository) IncomingPending(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	reqs := []models.FriendRequest{}
	err := r.db.WithContext(ctx).
		Preload("Sender", selectSummary).
		Where("recipient_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// AcceptedIncoming returns requests addressed to userID that were accepted, with the sender populated.
func (r *FriendRepository) AcceptedIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	reqs := []models.FriendRequest{}
	err := r.db.WithContext(ctx).
		Preload("Sender", selectSummary).
		Where("recipient_id = ? AND status = ?", userID, models.FriendRequestStatusAccepted).
		Order("updated_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// OutgoingPending returns pending requests sent by userID with the recipient populated.
func (r *FriendRepository) OutgoingPending(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	reqs := []models.FriendRequest{}
	err := r.db.WithContext(ctx).
		Preload("Recipient", selectSummary).
		Where("sender_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// AddFriendPair inserts both directed sides. Existing sides are left as is.
func (r *FriendRepository) AddFriendPair(ctx context.Context, a, b string) error {
	rows := []models.Friendship{
		{UserID: a, FriendID: b},
		{UserID: b, FriendID: a},
	}
	return r.AddFriendships(ctx, rows)
}

func (r *FriendRepository) AddFriendships(ctx context.Context, rows []models.Friendship) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *FriendRepository) AreFriends(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

// Friends returns the display projection of every friend of userID.
func (r *FriendRepository) Friends(ctx context.Context, userID string) ([]models.UserSummary, error) {
	friends := []models.UserSummary{}
	err := r.db.WithContext(ctx).
		Select("users.id, users.full_name, users.profile_pic, users.native_language, users.learning_language, users.bio, users.location").
		Joins("JOIN friendships ON friendships.friend_id = users.id").
		Where("friendships.user_id = ?", userID).
		Order("friendships.created_at ASC").
		Find(&friends).Error
	return friends, err
}

// OneSided returns directed friendship rows whose mirror row is missing.
func (r *FriendRepository) OneSided(ctx context.Context, limit int) ([]models.Friendship, error) {
	rows := []models.Friendship{}
	err := r.db.WithContext(ctx).
		Table("friendships AS f").
		Select("f.id, f.user_id, f.friend_id, f.created_at").
		Joins("LEFT JOIN friendships AS m ON m.user_id = f.friend_id AND m.friend_id = f.user_id").
		Where("m.id IS NULL").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
