package database

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tele-drive/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormDatabase gorm-backed metadata store, dialect chosen at construction
type GormDatabase struct {
	db *gorm.DB
}

// SQLiteConfig SQLite configuration
type SQLiteConfig struct {
	Path string
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// NewSQLiteDatabase create SQLite database instance
func NewSQLiteDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*SQLiteConfig)
	if !ok {
		return nil, fmt.Errorf("invalid SQLite config type")
	}

	dsn := cfg.Path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite tolerates exactly one writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	g := &GormDatabase{db: db}
	if err := g.migrate(); err != nil {
		return nil, err
	}

	log.Printf("[database] SQLite store opened: %s", cfg.Path)
	return g, nil
}

// NewMySQLDatabase create MySQL database instance
func NewMySQLDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*MySQLConfig)
	if !ok {
		return nil, fmt.Errorf("invalid MySQL config type")
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	g := &GormDatabase{db: db}
	if err := g.migrate(); err != nil {
		return nil, err
	}

	log.Println("[database] MySQL store connected")
	return g, nil
}

// GetGormDB get the underlying gorm handle (tests only)
func (g *GormDatabase) GetGormDB() *gorm.DB {
	return g.db
}

// User operations

func (g *GormDatabase) CreateUser(user *model.User) error {
	return g.db.Create(user).Error
}

func (g *GormDatabase) GetUserByID(id int64) (*model.User, error) {
	var user model.User
	err := g.db.Where("id = ? AND is_active = ?", id, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &user, err
}

func (g *GormDatabase) GetUserByTelegramID(telegramID string) (*model.User, error) {
	var user model.User
	err := g.db.Where("telegram_id = ? AND is_active = ?", telegramID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &user, err
}

func (g *GormDatabase) UpdateUser(user *model.User) error {
	return g.db.Save(user).Error
}

// Folder operations

func (g *GormDatabase) CreateFolder(folder *model.Folder) error {
	return g.db.Create(folder).Error
}

func (g *GormDatabase) GetFolderByID(id int64) (*model.Folder, error) {
	var folder model.Folder
	err := g.db.Where("id = ? AND is_deleted = ?", id, false).First(&folder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &folder, err
}

func (g *GormDatabase) ListFolders(ownerID int64, parentID *int64) ([]*model.Folder, error) {
	var folders []*model.Folder
	query := g.db.Where("owner_id = ? AND is_deleted = ?", ownerID, false)
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	err := query.Order("name ASC").Find(&folders).Error
	return folders, err
}

func (g *GormDatabase) UpdateFolder(folder *model.Folder) error {
	return g.db.Save(folder).Error
}

func (g *GormDatabase) SoftDeleteFolder(id int64) error {
	return g.db.Model(&model.Folder{}).Where("id = ?", id).Update("is_deleted", true).Error
}

// FileRecord operations

func (g *GormDatabase) UpsertFileRecord(file *model.FileRecord) (bool, error) {
	inserted := false
	err := g.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findExisting(tx, file)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing == nil {
			if err := tx.Create(file).Error; err != nil {
				// A concurrent writer may have won the race on the unique key;
				// the constraint violation degrades to an update.
				if !isUniqueViolation(err) {
					return err
				}
				existing, err = findExisting(tx, file)
				if err != nil {
					return err
				}
			} else {
				inserted = true
				return nil
			}
		}
		applyMutableFields(existing, file)
		if err := tx.Save(existing).Error; err != nil {
			return err
		}
		*file = *existing
		return nil
	})
	return inserted, err
}

// findExisting locates the row by origin key when present, else by unique_id
func findExisting(tx *gorm.DB, file *model.FileRecord) (*model.FileRecord, error) {
	var existing model.FileRecord
	var err error
	if file.HasOrigin() {
		err = tx.Where("owner_id = ? AND telegram_channel_id = ? AND telegram_message_id = ?",
			file.OwnerID, file.TelegramChannelID, file.TelegramMessageID).First(&existing).Error
	} else {
		err = tx.Where("owner_id = ? AND unique_id = ?", file.OwnerID, file.UniqueID).First(&existing).Error
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// applyMutableFields copies the fields a rescan is allowed to refresh
func applyMutableFields(dst, src *model.FileRecord) {
	dst.Filename = src.Filename
	dst.OriginalFilename = src.OriginalFilename
	dst.MimeType = src.MimeType
	dst.FileSize = src.FileSize
	dst.FileType = src.FileType
	dst.TelegramChannel = src.TelegramChannel
	dst.TelegramFileReference = src.TelegramFileReference
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}

func (g *GormDatabase) GetFileRecordByID(id int64) (*model.FileRecord, error) {
	var file model.FileRecord
	err := g.db.Where("id = ?", id).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &file, err
}

func (g *GormDatabase) GetFileRecordByOrigin(ownerID, channelID, messageID int64) (*model.FileRecord, error) {
	var file model.FileRecord
	err := g.db.Where("owner_id = ? AND telegram_channel_id = ? AND telegram_message_id = ?",
		ownerID, channelID, messageID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &file, err
}

func (g *GormDatabase) GetFileRecordByUniqueID(ownerID int64, uniqueID string) (*model.FileRecord, error) {
	var file model.FileRecord
	err := g.db.Where("owner_id = ? AND unique_id = ?", ownerID, uniqueID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &file, err
}

func (g *GormDatabase) ListFileRecordsWithCursor(filter FileFilter, cursor int64, size int) ([]*model.FileRecord, int64, bool, error) {
	var files []*model.FileRecord
	query := g.db.Where("owner_id = ?", filter.OwnerID)
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filter.FolderID != nil {
		query = query.Where("folder_id = ?", *filter.FolderID)
	}
	if filter.FileType != "" {
		query = query.Where("file_type = ?", filter.FileType)
	}
	if filter.FavoriteOnly {
		query = query.Where("is_favorite = ?", true)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("filename LIKE ? OR tags LIKE ? OR description LIKE ?", like, like, like)
	}
	if cursor > 0 {
		query = query.Where("id < ?", cursor)
	}

	err := query.Order("id DESC").Limit(size + 1).Find(&files).Error
	if err != nil {
		return nil, 0, false, err
	}

	hasMore := len(files) > size
	if hasMore {
		files = files[:size]
	}
	var nextCursor int64
	if len(files) > 0 {
		nextCursor = files[len(files)-1].ID
	}
	return files, nextCursor, hasMore, nil
}

func (g *GormDatabase) UpdateFileRecord(file *model.FileRecord) error {
	return g.db.Save(file).Error
}

func (g *GormDatabase) SoftDeleteFileRecord(id int64) error {
	return g.db.Model(&model.FileRecord{}).Where("id = ?", id).Update("is_deleted", true).Error
}

func (g *GormDatabase) IncrementFileDownloadCount(id int64) error {
	return g.db.Model(&model.FileRecord{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}

func (g *GormDatabase) CountFilesByScan(ownerID, channelID int64, from, to time.Time) (int64, error) {
	var count int64
	err := g.db.Model(&model.FileRecord{}).
		Where("owner_id = ? AND telegram_channel_id = ? AND created_at >= ? AND created_at <= ?",
			ownerID, channelID, from, to).
		Count(&count).Error
	return count, err
}

// ScanSession operations

func (g *GormDatabase) CreateScanSession(session *model.ScanSession) error {
	return g.db.Create(session).Error
}

func (g *GormDatabase) GetScanSessionByID(id int64) (*model.ScanSession, error) {
	var session model.ScanSession
	err := g.db.Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &session, err
}

func (g *GormDatabase) GetRunningScanByOwner(ownerID int64) (*model.ScanSession, error) {
	var session model.ScanSession
	err := g.db.Where("owner_id = ? AND status IN ?", ownerID,
		[]model.ScanStatus{model.ScanStatusPending, model.ScanStatusRunning}).
		Order("id DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &session, err
}

func (g *GormDatabase) ListScanSessionsByOwner(ownerID int64, limit int) ([]*model.ScanSession, error) {
	var sessions []*model.ScanSession
	err := g.db.Where("owner_id = ?", ownerID).Order("id DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}

func (g *GormDatabase) UpdateScanSession(session *model.ScanSession) error {
	return g.db.Save(session).Error
}

// ShareLink operations

func (g *GormDatabase) CreateShareLink(link *model.ShareLink) error {
	return g.db.Create(link).Error
}

func (g *GormDatabase) GetShareLinkByToken(token string) (*model.ShareLink, error) {
	var link model.ShareLink
	err := g.db.Where("token = ?", token).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &link, err
}

func (g *GormDatabase) ListShareLinksByOwner(ownerID int64) ([]*model.ShareLink, error) {
	var links []*model.ShareLink
	err := g.db.Where("owner_id = ?", ownerID).Order("id DESC").Find(&links).Error
	return links, err
}

func (g *GormDatabase) UpdateShareLink(link *model.ShareLink) error {
	return g.db.Save(link).Error
}

// The cap checks ride in the WHERE clause so two racing requests cannot both
// take the last allowed view or download.

func (g *GormDatabase) IncrementShareLinkViews(id int64) (bool, error) {
	res := g.db.Model(&model.ShareLink{}).
		Where("id = ? AND is_active = ? AND (max_views IS NULL OR views < max_views)", id, true).
		UpdateColumn("views", gorm.Expr("views + 1"))
	return res.RowsAffected == 1, res.Error
}

func (g *GormDatabase) IncrementShareLinkDownloads(id int64) (bool, error) {
	res := g.db.Model(&model.ShareLink{}).
		Where("id = ? AND is_active = ? AND (max_downloads IS NULL OR downloads < max_downloads)", id, true).
		UpdateColumn("downloads", gorm.Expr("downloads + 1"))
	return res.RowsAffected == 1, res.Error
}

// General operations

func (g *GormDatabase) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
