package model

import "time"

type ProgressAction string

const (
	ActionStar    ProgressAction = "star"
	ActionUnstar  ProgressAction = "unstar"
	ActionSolve   ProgressAction = "solve"
	ActionUnsolve ProgressAction = "unsolve"
)

func (a ProgressAction) Valid() bool {
	switch a {
	case ActionStar, ActionUnstar, ActionSolve, ActionUnsolve:
		return true
	}
	return false
}

// Apply 作用于当前的收藏/解决状态，每个动作只改变其中一个
func (a ProgressAction) Apply(starred, solved bool) (bool, bool) {
	switch a {
	case ActionStar:
		starred = true
	case ActionUnstar:
		starred = false
	case ActionSolve:
		solved = true
	case ActionUnsolve:
		solved = false
	}
	return starred, solved
}

// UserQuestionProgress 用户对单个题目的进度，首次交互时创建
type UserQuestionProgress struct {
	UserID     string     `gorm:"primaryKey;type:varchar(128)" json:"user_id"`
	QuestionID int64      `gorm:"primaryKey;autoIncrement:false" json:"question_id"`
	IsSolved   bool       `gorm:"not null;default:false" json:"is_solved"`
	IsStarred  bool       `gorm:"not null;default:false" json:"is_starred"`
	SolvedAt   *time.Time `json:"solved_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (UserQuestionProgress) TableName() string {
	return "user_question_progress"
}

// UserDailyStat 每日解题台账，连续天数的唯一依据
type UserDailyStat struct {
	UserID      string `gorm:"primaryKey;type:varchar(128)" json:"user_id"`
	Date        string `gorm:"primaryKey;type:varchar(10)" json:"date"`
	SolvedCount int    `gorm:"not null;default:0" json:"solved_count"`
}

func (UserDailyStat) TableName() string {
	return "user_daily_stats"
}
