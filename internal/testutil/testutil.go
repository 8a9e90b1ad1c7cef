// Package testutil 测试共用的内存数据库与数据准备
package testutil

import (
	"mindtrack_backend/internal/config"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/pkg/database"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB 打开已迁移的 SQLite 内存库，测试结束时关闭
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   ":memory:",
	})
	require.NoError(t, err)

	_, err = database.Migrate(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SeedQuestion 写入一道题目，difficulty 为空时不设置难度
func SeedQuestion(t *testing.T, db *gorm.DB, id int64, title, difficulty string) model.Question {
	t.Helper()

	q := model.Question{
		QuestionID: id,
		Title:      title,
		URL:        "https://leetcode.com/problems/" + title,
		Source:     "leetcode",
	}
	if difficulty != "" {
		q.Difficulty = &difficulty
	}
	require.NoError(t, db.Create(&q).Error)
	return q
}

// SeedUser 写入一条用户统计
func SeedUser(t *testing.T, db *gorm.DB, user model.User) model.User {
	t.Helper()
	require.NoError(t, db.Create(&user).Error)
	return user
}

// Day 返回指定日期中午（UTC）的时刻
func Day(date string) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return t.Add(12 * time.Hour)
}

// Clock 可手动调整的测试时钟
type Clock struct {
	Current time.Time
}

func NewClock(date string) *Clock {
	return &Clock{Current: Day(date)}
}

func (c *Clock) Now() time.Time {
	return c.Current
}

// Set 将时钟调到另一天的中午
func (c *Clock) Set(date string) {
	c.Current = Day(date)
}

func StringPtr(s string) *string {
	return &s
}

func BoolPtr(b bool) *bool {
	return &b
}
