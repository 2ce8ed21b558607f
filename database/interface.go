package database

import (
	"time"

	"tele-drive/model"
)

// FileFilter narrows file listings. Zero values mean "no constraint".
type FileFilter struct {
	OwnerID        int64
	FolderID       *int64
	FileType       model.FileType
	FavoriteOnly   bool
	Search         string // matches filename/tags/description
	IncludeDeleted bool   // admin audit opt-in
}

// Database interface for the metadata store
type Database interface {
	// User operations
	CreateUser(user *model.User) error
	GetUserByID(id int64) (*model.User, error)
	GetUserByTelegramID(telegramID string) (*model.User, error)
	UpdateUser(user *model.User) error

	// Folder operations
	CreateFolder(folder *model.Folder) error
	GetFolderByID(id int64) (*model.Folder, error)
	ListFolders(ownerID int64, parentID *int64) ([]*model.Folder, error)
	UpdateFolder(folder *model.Folder) error
	SoftDeleteFolder(id int64) error

	// FileRecord operations
	// UpsertFileRecord inserts the record or, when the origin key
	// (owner_id, telegram_channel_id, telegram_message_id) or the
	// (owner_id, unique_id) key already exists, updates the mutable fields.
	// Returns true when a new row was inserted.
	UpsertFileRecord(file *model.FileRecord) (bool, error)
	GetFileRecordByID(id int64) (*model.FileRecord, error)
	GetFileRecordByOrigin(ownerID, channelID, messageID int64) (*model.FileRecord, error)
	GetFileRecordByUniqueID(ownerID int64, uniqueID string) (*model.FileRecord, error)
	ListFileRecordsWithCursor(filter FileFilter, cursor int64, size int) ([]*model.FileRecord, int64, bool, error)
	UpdateFileRecord(file *model.FileRecord) error
	SoftDeleteFileRecord(id int64) error
	IncrementFileDownloadCount(id int64) error
	CountFilesByScan(ownerID, channelID int64, from, to time.Time) (int64, error)

	// ScanSession operations
	CreateScanSession(session *model.ScanSession) error
	GetScanSessionByID(id int64) (*model.ScanSession, error)
	GetRunningScanByOwner(ownerID int64) (*model.ScanSession, error)
	ListScanSessionsByOwner(ownerID int64, limit int) ([]*model.ScanSession, error)
	UpdateScanSession(session *model.ScanSession) error

	// ShareLink operations
	CreateShareLink(link *model.ShareLink) error
	GetShareLinkByToken(token string) (*model.ShareLink, error)
	ListShareLinksByOwner(ownerID int64) ([]*model.ShareLink, error)
	UpdateShareLink(link *model.ShareLink) error
	IncrementShareLinkViews(id int64) (bool, error)
	IncrementShareLinkDownloads(id int64) (bool, error)

	// General operations
	Close() error
}

// DBType database type
type DBType string

const (
	DBTypeSQLite DBType = "sqlite"
	DBTypeMySQL  DBType = "mysql"
)

// Global database instance
var DB Database

// currentDBType stores the current database type
var currentDBType DBType

// InitDatabase initialize database with specified type
func InitDatabase(dbType DBType, config interface{}) error {
	var err error

	switch dbType {
	case DBTypeSQLite:
		DB, err = NewSQLiteDatabase(config)
		currentDBType = DBTypeSQLite
	case DBTypeMySQL:
		DB, err = NewMySQLDatabase(config)
		currentDBType = DBTypeMySQL
	default:
		return ErrUnsupportedDBType
	}

	return err
}

// GetDBType get current database type
func GetDBType() DBType {
	return currentDBType
}
