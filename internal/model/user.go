package model

import "strings"

// User 用户聚合统计记录，连续天数由每日台账推导
// swagger:model User
type User struct {
	UserID           string  `gorm:"primaryKey;type:varchar(128)" json:"user_id"`
	AppUsername      *string `gorm:"type:varchar(64);uniqueIndex" json:"app_username"`
	LeetcodeUsername *string `gorm:"type:varchar(64);uniqueIndex" json:"leetcode_username"`
	IsVerified       bool    `gorm:"not null;default:false" json:"is_verified"`
	EasySolved       int     `gorm:"not null;default:0" json:"easy_solved"`
	MediumSolved     int     `gorm:"not null;default:0" json:"medium_solved"`
	HardSolved       int     `gorm:"not null;default:0" json:"hard_solved"`
	TotalSolved      int     `gorm:"not null;default:0;index" json:"total_solved"`
	CurrentStreak    int     `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak    int     `gorm:"not null;default:0" json:"longest_streak"`
	LastSolvedDate   *string `gorm:"type:varchar(10)" json:"last_solved_date"`
	Timestamps
}

func (User) TableName() string {
	return "users"
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// BucketOf 不区分大小写识别难度，未知或空值返回空字符串
func BucketOf(raw string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return DifficultyEasy
	case "medium":
		return DifficultyMedium
	case "hard":
		return DifficultyHard
	}
	return ""
}

// Column 返回难度对应的计数列
func (d Difficulty) Column() string {
	switch d {
	case DifficultyEasy:
		return "easy_solved"
	case DifficultyMedium:
		return "medium_solved"
	case DifficultyHard:
		return "hard_solved"
	}
	return ""
}
