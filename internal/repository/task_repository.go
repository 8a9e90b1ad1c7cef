package repository

import (
	"context"
	"mindtrack_backend/internal/model"

	"gorm.io/gorm"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.UserTask) error {
	return r.DB.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) Save(ctx context.Context, task *model.UserTask) error {
	return r.DB.WithContext(ctx).Save(task).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID string) (*model.UserTask, error) {
	var task model.UserTask
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]model.UserTask, error) {
	var tasks []model.UserTask
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// ListForDay 计划日期或截止日期为指定日期的任务
func (r *TaskRepository) ListForDay(ctx context.Context, userID, day string) ([]model.UserTask, error) {
	var tasks []model.UserTask
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND (date = ? OR deadline = ?)", userID, day, day).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&model.UserTask{})
	return result.RowsAffected, result.Error
}

func (r *TaskRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserTask{}).Error
}
