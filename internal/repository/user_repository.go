package repository

import (
	"context"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/util"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

// EnsureUser 不存在时以全零、未认证状态创建
func (r *UserRepository) EnsureUser(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.User{UserID: userID}).Error
}

func (r *UserRepository) LockUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByAppUsername 按应用用户名查找，不区分大小写
func (r *UserRepository) FindByAppUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Where("LOWER(app_username) = ?", strings.ToLower(username)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AppUsernameHeldByOther 判断用户名是否已被其他用户占用
func (r *UserRepository) AppUsernameHeldByOther(ctx context.Context, username, userID string) (bool, error) {
	return r.heldByOther(ctx, "app_username", username, userID)
}

func (r *UserRepository) LeetcodeUsernameHeldByOther(ctx context.Context, username, userID string) (bool, error) {
	return r.heldByOther(ctx, "leetcode_username", username, userID)
}

func (r *UserRepository) heldByOther(ctx context.Context, column, username, userID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("LOWER("+column+") = ? AND user_id <> ?", strings.ToLower(username), userID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(fields).Error
}

func (r *UserRepository) List(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	var users []model.User
	query := r.DB.WithContext(ctx).Model(&model.User{})

	if filter.Verified != nil {
		query = query.Where("is_verified = ?", *filter.Verified)
	}
	if filter.Query != "" {
		term := "%" + util.EscapeLike(strings.ToLower(filter.Query)) + "%"
		query = query.Where(
			"(LOWER(user_id) LIKE ? ESCAPE '!' OR LOWER(app_username) LIKE ? ESCAPE '!' OR LOWER(leetcode_username) LIKE ? ESCAPE '!')",
			term, term, term,
		)
	}

	err := query.
		Order("total_solved DESC").
		Order("longest_streak DESC").
		Order("user_id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Delete(ctx context.Context, userID string) (int64, error) {
	result := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.User{})
	return result.RowsAffected, result.Error
}
