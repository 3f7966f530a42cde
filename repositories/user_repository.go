package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"zyncchat-api/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Save writes every column of user.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail expects an already normalized address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByResetToken looks up a user by hashed reset token that has not expired at now.
func (r *UserRepository) FindByResetToken(ctx context.Context, hashed string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expires > ?", hashed, now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Recommendations returns onboarded users that are neither userID nor one of its friends.
func (r *UserRepository) Recommendations(ctx context.Context, userID string, limit int) ([]models.UserSummary, error) {
	friendIDs := r.db.Model(&models.Friendship{}).Select("friend_id").Where("user_id = ?", userID)

	users := []models.UserSummary{}
	err := r.db.WithContext(ctx).
		Select(models.UserSummaryColumns).
		Where("id <> ? AND is_onboarded = ?", userID, true).
		Where("id NOT IN (?)", friendIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
