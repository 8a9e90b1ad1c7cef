package database

import (
	"fmt"
	"mindtrack_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// SchemaMigration 已执行的迁移版本
type SchemaMigration struct {
	Version   int    `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"type:varchar(128);not null"`
	AppliedAt time.Time
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

type migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// 版本号只增不改，已发布的迁移不再修改
var migrations = []migration{
	{1, "create_catalog", func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&model.Question{},
			&model.Category{},
			&model.Company{},
			&model.Sheet{},
			&model.QuestionCategory{},
			&model.QuestionCompany{},
			&model.QuestionSheet{},
		)
	}},
	{2, "create_progress", func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&model.User{},
			&model.UserQuestionProgress{},
			&model.UserDailyStat{},
		)
	}},
	{3, "create_registrations", func(tx *gorm.DB) error {
		return tx.AutoMigrate(&model.Registration{})
	}},
	{4, "create_user_tasks", func(tx *gorm.DB) error {
		return tx.AutoMigrate(&model.UserTask{})
	}},
	{5, "create_profiles", func(tx *gorm.DB) error {
		return tx.AutoMigrate(&model.ProfileDoc{})
	}},
	{6, "index_daily_stats_active", func(tx *gorm.DB) error {
		if tx.Migrator().HasIndex(&model.UserDailyStat{}, "idx_user_daily_stats_active") {
			return nil
		}
		return tx.Exec("CREATE INDEX idx_user_daily_stats_active ON user_daily_stats (user_id, solved_count, date)").Error
	}},
	{7, "index_progress_solved", func(tx *gorm.DB) error {
		if tx.Migrator().HasIndex(&model.UserQuestionProgress{}, "idx_progress_user_solved") {
			return nil
		}
		return tx.Exec("CREATE INDEX idx_progress_user_solved ON user_question_progress (user_id, is_solved)").Error
	}},
}

// Migrate 按版本顺序执行未应用的迁移，返回本次执行的版本号
func Migrate(db *gorm.DB) ([]int, error) {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var done []int
	if err := db.Model(&SchemaMigration{}).Pluck("version", &done).Error; err != nil {
		return nil, err
	}
	appliedSet := make(map[int]bool, len(done))
	for _, v := range done {
		appliedSet[v] = true
	}

	var applied []int
	for _, m := range migrations {
		if appliedSet[m.Version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

// LatestVersion 当前代码中最高的迁移版本
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}
