package model

import "time"

// QuestionFilter 题目列表筛选条件，分类/题单/公司可传 ID 或名称
type QuestionFilter struct {
	Query        string
	Difficulties []string
	Categories   []string
	Sheets       []string
	Companies    []string
	UserID       string
	Limit        int
	Offset       int
}

// swagger:model QuestionRow
type QuestionRow struct {
	QuestionID     int64    `json:"question_id"`
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	Source         string   `json:"source"`
	Difficulty     *string  `json:"difficulty"`
	IsPremium      bool     `json:"is_premium"`
	AcceptanceRate *float64 `json:"acceptance_rate"`
	Frequency      *float64 `json:"frequency"`
	Categories     string   `json:"categories"`
	Companies      string   `json:"companies"`
	IsSolved       *bool    `json:"is_solved,omitempty" gorm:"-"`
	IsStarred      *bool    `json:"is_starred,omitempty" gorm:"-"`
}

// swagger:model QuestionDetail
type QuestionDetail struct {
	QuestionRow
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// swagger:model LeaderboardRow
type LeaderboardRow struct {
	UserID           string  `json:"user_id"`
	Username         string  `json:"username"`
	LeetcodeUsername *string `json:"leetcode_username"`
	Streak           int     `json:"streak"`
	LongestStreak    int     `json:"longest_streak"`
	TotalSolved      int     `json:"total_solved"`
	EasySolved       int     `json:"easy_solved"`
	MediumSolved     int     `json:"medium_solved"`
	HardSolved       int     `json:"hard_solved"`
	Rank             int     `json:"rank" gorm:"-"`
}

// swagger:model UserProgressSummary
type UserProgressSummary struct {
	UserID         string  `json:"user_id"`
	EasySolved     int     `json:"easy_solved"`
	MediumSolved   int     `json:"medium_solved"`
	HardSolved     int     `json:"hard_solved"`
	TotalSolved    int     `json:"total_solved"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	LastSolvedDate *string `json:"last_solved_date"`
	SolvedCount    *int64  `json:"solved_count,omitempty"`
	StarredCount   *int64  `json:"starred_count,omitempty"`
}

type UserFilter struct {
	Verified *bool
	Query    string
	Limit    int
	Offset   int
}

type RegistrationFilter struct {
	Status string
	Query  string
	Limit  int
	Offset int
}

// ProgressResult 进度更新后的最终状态
type ProgressResult struct {
	IsStarred bool `json:"is_starred"`
	IsSolved  bool `json:"is_solved"`
}
