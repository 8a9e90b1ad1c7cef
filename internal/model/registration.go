package model

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationVerified RegistrationStatus = "verified"
	RegistrationRejected RegistrationStatus = "rejected"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationVerified, RegistrationRejected:
		return true
	}
	return false
}

// Registration 排行榜登记申请，用户名以小写形式保证唯一
// swagger:model Registration
type Registration struct {
	UID                   string             `gorm:"primaryKey;type:varchar(128)" json:"uid"`
	DisplayName           string             `gorm:"type:varchar(128)" json:"display_name"`
	Email                 string             `gorm:"type:varchar(255)" json:"email"`
	AvatarURL             string             `gorm:"type:varchar(512)" json:"avatar_url"`
	AppUsername           string             `gorm:"type:varchar(64);not null" json:"app_username"`
	AppUsernameLower      string             `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	LeetcodeUsername      string             `gorm:"type:varchar(64);not null" json:"leetcode_username"`
	LeetcodeUsernameLower string             `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	Status                RegistrationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Timestamps
}

func (Registration) TableName() string {
	return "registrations"
}
