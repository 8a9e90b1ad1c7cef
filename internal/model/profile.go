package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// 资料文档字段名，Redis 哈希与 SQL 文档共用
const (
	ProfileFieldName             = "name"
	ProfileFieldEmail            = "email"
	ProfileFieldPhotoURL         = "photo_url"
	ProfileFieldAppUsername      = "app_username"
	ProfileFieldLeetcodeUsername = "leetcode_username"
	ProfileFieldIsVerified       = "is_verified"
	ProfileFieldIsAdmin          = "is_admin"
	ProfileFieldCreatedAt        = "created_at"
	ProfileFieldUpdatedAt        = "updated_at"
)

// Profile 用户资料文档，独立于关系库的用户统计
// swagger:model Profile
type Profile struct {
	UID              string    `json:"uid"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PhotoURL         string    `json:"photo_url"`
	AppUsername      string    `json:"app_username"`
	LeetcodeUsername string    `json:"leetcode_username"`
	IsVerified       bool      `json:"is_verified"`
	IsAdmin          *bool     `json:"is_admin,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProfileDoc 未启用 Redis 时的文档存储
type ProfileDoc struct {
	UID       string            `gorm:"primaryKey;type:varchar(128)"`
	Doc       datatypes.JSONMap `gorm:"not null"`
	UpdatedAt time.Time
}

func (ProfileDoc) TableName() string {
	return "profiles"
}

func (p *Profile) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		ProfileFieldName:             p.Name,
		ProfileFieldEmail:            p.Email,
		ProfileFieldPhotoURL:         p.PhotoURL,
		ProfileFieldAppUsername:      p.AppUsername,
		ProfileFieldLeetcodeUsername: p.LeetcodeUsername,
		ProfileFieldIsVerified:       p.IsVerified,
		ProfileFieldCreatedAt:        p.CreatedAt.UTC().Format(time.RFC3339),
		ProfileFieldUpdatedAt:        p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.IsAdmin != nil {
		fields[ProfileFieldIsAdmin] = *p.IsAdmin
	}
	return fields
}

// ProfileFromFields 从文档字段还原资料，值可能是字符串（Redis）或原生类型（JSON）
func ProfileFromFields(uid string, fields map[string]interface{}) *Profile {
	p := &Profile{UID: uid}
	p.Name = fieldString(fields[ProfileFieldName])
	p.Email = fieldString(fields[ProfileFieldEmail])
	p.PhotoURL = fieldString(fields[ProfileFieldPhotoURL])
	p.AppUsername = fieldString(fields[ProfileFieldAppUsername])
	p.LeetcodeUsername = fieldString(fields[ProfileFieldLeetcodeUsername])
	p.IsVerified = fieldBool(fields[ProfileFieldIsVerified])
	if raw, ok := fields[ProfileFieldIsAdmin]; ok && raw != nil && fieldString(raw) != "" {
		v := fieldBool(raw)
		p.IsAdmin = &v
	}
	p.CreatedAt = fieldTime(fields[ProfileFieldCreatedAt])
	p.UpdatedAt = fieldTime(fields[ProfileFieldUpdatedAt])
	return p
}

func fieldString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func fieldBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	s := strings.ToLower(fieldString(v))
	return s == "1" || s == "true"
}

func fieldTime(v interface{}) time.Time {
	t, err := time.Parse(time.RFC3339, fieldString(v))
	if err != nil {
		return time.Time{}
	}
	return t
}
