package model

import "gorm.io/datatypes"

// swagger:model Subtask
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// UserTask 个人任务，提醒与子任务以 JSON 列保存
// swagger:model UserTask
type UserTask struct {
	UUIDBase
	UserID       string                       `gorm:"type:varchar(128);not null;index" json:"user_id"`
	Title        string                       `gorm:"type:varchar(255);not null" json:"title"`
	Completed    bool                         `gorm:"not null;default:false" json:"completed"`
	Date         string                       `gorm:"type:varchar(10);index" json:"date"`
	Deadline     string                       `gorm:"type:varchar(10)" json:"deadline"`
	Notification bool                         `gorm:"not null;default:false" json:"notification"`
	Reminders    datatypes.JSONSlice[string]  `json:"reminders"`
	Subtasks     datatypes.JSONSlice[Subtask] `json:"subtasks"`
}

func (UserTask) TableName() string {
	return "user_tasks"
}
