package model

import "time"

// ScanSession one channel scan run with its plan and counters
type ScanSession struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	OwnerID     int64  `gorm:"not null;index:idx_owner_status,priority:1" json:"owner_id"`
	ChannelName string `gorm:"type:varchar(255);not null" json:"channel_name"`
	ChannelID   int64  `gorm:"index" json:"channel_id"` // Resolved entity id, 0 until resolution

	Status          ScanStatus `gorm:"type:varchar(20);index:idx_owner_status,priority:2;default:'pending'" json:"status"`
	MessagesScanned int64      `gorm:"default:0" json:"messages_scanned"`
	FilesFound      int64      `gorm:"default:0" json:"files_found"`
	TotalMessages   *int64     `json:"total_messages"` // nil = upstream count unknown
	ErrorMessage    string     `gorm:"type:text" json:"error_message"`

	// Plan
	Direction          ScanDirection `gorm:"type:varchar(20);default:'newest_first'" json:"direction"`
	MaxMessages        *int64        `json:"max_messages"`
	FileTypes          string        `gorm:"type:varchar(200)" json:"file_types"` // Comma list of enabled kinds
	MinSize            int64         `gorm:"default:0" json:"min_size"`
	MaxSize            int64         `gorm:"default:0" json:"max_size"` // 0 = unbounded
	ExtensionBlocklist string        `gorm:"type:varchar(500)" json:"extension_blocklist"`

	StartedAt   time.Time  `gorm:"autoCreateTime" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TableName specify table name
func (ScanSession) TableName() string {
	return "tb_scan_session"
}
