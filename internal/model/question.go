package model

import "time"

// Question 题库，由外部导入流程维护，本服务只读
// swagger:model Question
type Question struct {
	QuestionID     int64     `gorm:"primaryKey;autoIncrement:false" json:"question_id"`
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`
	URL            string    `gorm:"type:varchar(512)" json:"url"`
	Source         string    `gorm:"type:varchar(64)" json:"source"`
	Difficulty     *string   `gorm:"type:varchar(16);index" json:"difficulty"`
	IsPremium      bool      `gorm:"not null;default:false" json:"is_premium"`
	AcceptanceRate *float64  `json:"acceptance_rate"`
	Frequency      *float64  `json:"frequency"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}

type Category struct {
	CategoryID int64  `gorm:"primaryKey" json:"category_id"`
	Name       string `gorm:"type:varchar(128);not null;uniqueIndex" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}

type Company struct {
	CompanyID int64  `gorm:"primaryKey" json:"company_id"`
	Name      string `gorm:"type:varchar(128);not null;uniqueIndex" json:"name"`
}

func (Company) TableName() string {
	return "companies"
}

type Sheet struct {
	SheetID int64  `gorm:"primaryKey" json:"sheet_id"`
	Name    string `gorm:"type:varchar(128);not null" json:"name"`
	Source  string `gorm:"type:varchar(64)" json:"source"`
}

func (Sheet) TableName() string {
	return "sheets"
}

type QuestionCategory struct {
	QuestionID int64 `gorm:"primaryKey;autoIncrement:false"`
	CategoryID int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

func (QuestionCategory) TableName() string {
	return "question_categories"
}

type QuestionCompany struct {
	QuestionID int64 `gorm:"primaryKey;autoIncrement:false"`
	CompanyID  int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

func (QuestionCompany) TableName() string {
	return "question_companies"
}

type QuestionSheet struct {
	QuestionID int64 `gorm:"primaryKey;autoIncrement:false"`
	SheetID    int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

func (QuestionSheet) TableName() string {
	return "question_sheets"
}
