package model

import "time"

// User account owning folders, files, scans and share links
type User struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	TelegramID  string `gorm:"uniqueIndex;type:varchar(32);not null" json:"telegram_id"` // Stable messaging-account id
	PhoneNumber string `gorm:"uniqueIndex;type:varchar(20)" json:"phone_number"`         // E.164
	FirstName   string `gorm:"type:varchar(100)" json:"first_name"`
	LastName    string `gorm:"type:varchar(100)" json:"last_name"`
	Username    string `gorm:"type:varchar(100)" json:"username"`

	Role     Role `gorm:"type:varchar(10);default:'user'" json:"role"` // user/admin
	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// TableName specify table name
func (User) TableName() string {
	return "tb_user"
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
