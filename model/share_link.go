package model

import "time"

// ShareLink tokenized share of a file or folder
type ShareLink struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	FileID   *int64 `gorm:"index" json:"file_id"`
	FolderID *int64 `gorm:"index" json:"folder_id"`
	OwnerID  int64  `gorm:"index;not null" json:"owner_id"`

	Token        string `gorm:"uniqueIndex;type:varchar(64);not null" json:"token"` // URL-safe, >= 128 bits entropy
	PasswordHash string `gorm:"type:varchar(100)" json:"-"`                         // bcrypt, empty = no password

	CanView     bool `json:"can_view"`
	CanDownload bool `json:"can_download"`

	MaxViews     *int64 `json:"max_views"`
	MaxDownloads *int64 `json:"max_downloads"`
	Views        int64  `gorm:"default:0" json:"views"`
	Downloads    int64  `gorm:"default:0" json:"downloads"`

	ExpiresAt *time.Time `json:"expires_at"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specify table name
func (ShareLink) TableName() string {
	return "tb_share_link"
}

// Usable reports whether the link can still be served at all
func (s *ShareLink) Usable(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.ExpiresAt != nil && !now.Before(*s.ExpiresAt) {
		return false
	}
	if s.MaxViews != nil && s.Views >= *s.MaxViews {
		return false
	}
	// A download-capped link is spent once its downloads are gone, even for
	// the landing page.
	if s.MaxDownloads != nil && s.Downloads >= *s.MaxDownloads {
		return false
	}
	return true
}

// DownloadUsable reports whether a download may still be served
func (s *ShareLink) DownloadUsable(now time.Time) bool {
	if !s.Usable(now) {
		return false
	}
	if !s.CanDownload {
		return false
	}
	if s.MaxDownloads != nil && s.Downloads >= *s.MaxDownloads {
		return false
	}
	return true
}
