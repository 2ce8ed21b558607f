package model

import "time"

// FileRecord indexed file metadata, the central object of the drive
type FileRecord struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// Identity
	UniqueID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_owner_unique,priority:2" json:"unique_id"` // <epoch_us>_<seq>

	// Origin (channel the attachment was indexed from)
	TelegramChannel       string `gorm:"type:varchar(255)" json:"telegram_channel"`                              // Display name / handle
	TelegramChannelID     int64  `gorm:"index:idx_channel_message,priority:1" json:"telegram_channel_id"`        // Resolved channel id, 0 = unknown
	TelegramMessageID     int64  `gorm:"index:idx_channel_message,priority:2" json:"telegram_message_id"`        // Message id, 0 = unknown
	TelegramFileReference []byte `gorm:"type:blob" json:"-"`                                                     // Opaque fetch token, may expire

	// Content
	Filename         string   `gorm:"type:varchar(255);not null" json:"filename"`
	OriginalFilename string   `gorm:"type:varchar(255)" json:"original_filename"`
	MimeType         string   `gorm:"type:varchar(100)" json:"mime_type"`
	FileSize         int64    `json:"file_size"` // bytes, >= 0; 0 also stands in for unknown upstream size
	FileType         FileType `gorm:"type:varchar(20);index" json:"file_type"`
	ContentHash      string   `gorm:"type:varchar(64)" json:"content_hash"` // SHA256, set for local payloads

	// Placement
	OwnerID     int64       `gorm:"not null;index:idx_owner_deleted,priority:1;uniqueIndex:idx_owner_unique,priority:1" json:"owner_id"`
	FolderID    *int64      `gorm:"index" json:"folder_id"`
	StorageKind StorageKind `gorm:"type:varchar(10);default:'remote'" json:"storage_kind"`
	LocalPath   string      `gorm:"type:varchar(500)" json:"local_path"` // Required iff StorageKind = local

	// Flags and metrics
	IsDeleted      bool   `gorm:"index:idx_owner_deleted,priority:2;default:false" json:"is_deleted"`
	IsFavorite     bool   `gorm:"default:false" json:"is_favorite"`
	DownloadCount  int64  `gorm:"default:0" json:"download_count"`
	CurrentVersion int    `gorm:"default:1" json:"current_version"`
	VersionCount   int    `gorm:"default:1" json:"version_count"`
	Tags           string `gorm:"type:varchar(500)" json:"tags"`
	Description    string `gorm:"type:text" json:"description"`
	FileMetadata   string `gorm:"type:text" json:"file_metadata"` // Opaque JSON

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specify table name
func (FileRecord) TableName() string {
	return "tb_file_record"
}

// HasOrigin reports whether the record carries a full channel/message origin key
func (f *FileRecord) HasOrigin() bool {
	return f.TelegramChannelID != 0 && f.TelegramMessageID != 0
}
