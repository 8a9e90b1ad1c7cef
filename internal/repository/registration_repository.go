package repository

import (
	"context"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/util"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegistrationRepository struct {
	DB *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{DB: db}
}

func (r *RegistrationRepository) WithTx(tx *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{DB: tx}
}

func (r *RegistrationRepository) FindByUID(ctx context.Context, uid string) (*model.Registration, error) {
	var reg model.Registration
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("uid = ?", uid).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// LowerTakenByOther 小写用户名是否已被其他 uid 登记
func (r *RegistrationRepository) LowerTakenByOther(ctx context.Context, column, lower, uid string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Registration{}).
		Where(column+" = ? AND uid <> ?", lower, uid).
		Count(&count).Error
	return count > 0, err
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	return r.DB.WithContext(ctx).Create(reg).Error
}

func (r *RegistrationRepository) Save(ctx context.Context, reg *model.Registration) error {
	return r.DB.WithContext(ctx).Save(reg).Error
}

func (r *RegistrationRepository) UpdateStatus(ctx context.Context, uid string, status model.RegistrationStatus) (int64, error) {
	result := r.DB.WithContext(ctx).
		Model(&model.Registration{}).
		Where("uid = ?", uid).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *RegistrationRepository) List(ctx context.Context, filter model.RegistrationFilter) ([]model.Registration, error) {
	var rows []model.Registration
	query := r.DB.WithContext(ctx).Model(&model.Registration{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		term := "%" + util.EscapeLike(strings.ToLower(filter.Query)) + "%"
		query = query.Where(
			"(LOWER(display_name) LIKE ? ESCAPE '!' OR app_username_lower LIKE ? ESCAPE '!' OR leetcode_username_lower LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!')",
			term, term, term, term,
		)
	}

	err := query.
		Order("updated_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	return rows, err
}

func (r *RegistrationRepository) Delete(ctx context.Context, uid string) (int64, error) {
	result := r.DB.WithContext(ctx).Where("uid = ?", uid).Delete(&model.Registration{})
	return result.RowsAffected, result.Error
}
