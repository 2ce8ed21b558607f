package model

// FileType classified file kind
type FileType string

const (
	FileTypeDocument FileType = "document"
	FileTypeImage    FileType = "image"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeArchive  FileType = "archive"
	FileTypeCode     FileType = "code"
	FileTypeOther    FileType = "other"
)

// AllFileTypes every classifiable file kind
var AllFileTypes = []FileType{
	FileTypeDocument,
	FileTypeImage,
	FileTypeVideo,
	FileTypeAudio,
	FileTypeArchive,
	FileTypeCode,
	FileTypeOther,
}

// IsValidFileType check whether s names a known file kind
func IsValidFileType(s string) bool {
	for _, ft := range AllFileTypes {
		if string(ft) == s {
			return true
		}
	}
	return false
}

// StorageKind where the file payload lives
type StorageKind string

const (
	StorageKindRemote StorageKind = "remote" // payload stays in the channel, fetched on demand
	StorageKindLocal  StorageKind = "local"  // payload copied into the storage backend
)

// ScanStatus scan session lifecycle state
type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusCancelled ScanStatus = "cancelled"
	ScanStatusFailed    ScanStatus = "failed"
)

// Terminal reports whether the status is a terminal state
func (s ScanStatus) Terminal() bool {
	return s == ScanStatusCompleted || s == ScanStatusCancelled || s == ScanStatusFailed
}

// ScanDirection message walk order
type ScanDirection string

const (
	DirectionNewestFirst ScanDirection = "newest_first"
	DirectionOldestFirst ScanDirection = "oldest_first"
)

// Role user role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)
