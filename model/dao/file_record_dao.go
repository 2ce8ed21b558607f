package dao

import (
	"time"

	"tele-drive/database"
	"tele-drive/model"
)

// FileRecordDAO file record data access object
type FileRecordDAO struct {
	db database.Database
}

// NewFileRecordDAO create file record DAO instance
func NewFileRecordDAO() *FileRecordDAO {
	return &FileRecordDAO{
		db: database.DB,
	}
}

// Upsert insert-or-update a file record, returns true on insert
func (dao *FileRecordDAO) Upsert(file *model.FileRecord) (bool, error) {
	return dao.db.UpsertFileRecord(file)
}

// GetByID get file by id, nil when absent
func (dao *FileRecordDAO) GetByID(id int64) (*model.FileRecord, error) {
	file, err := dao.db.GetFileRecordByID(id)
	if err == database.ErrNotFound {
		return nil, nil
	}
	return file, err
}

// GetByOrigin get file by its channel/message origin key, nil when absent
func (dao *FileRecordDAO) GetByOrigin(ownerID, channelID, messageID int64) (*model.FileRecord, error) {
	file, err := dao.db.GetFileRecordByOrigin(ownerID, channelID, messageID)
	if err == database.ErrNotFound {
		return nil, nil
	}
	return file, err
}

// ListWithCursor get file list with cursor pagination
func (dao *FileRecordDAO) ListWithCursor(filter database.FileFilter, cursor int64, size int) ([]*model.FileRecord, int64, bool, error) {
	return dao.db.ListFileRecordsWithCursor(filter, cursor, size)
}

// Update update file record
func (dao *FileRecordDAO) Update(file *model.FileRecord) error {
	return dao.db.UpdateFileRecord(file)
}

// SoftDelete mark the file deleted
func (dao *FileRecordDAO) SoftDelete(id int64) error {
	return dao.db.SoftDeleteFileRecord(id)
}

// IncrementDownloadCount bump download_count by one
func (dao *FileRecordDAO) IncrementDownloadCount(id int64) error {
	return dao.db.IncrementFileDownloadCount(id)
}

// CountByScan count files a scan produced within its run window
func (dao *FileRecordDAO) CountByScan(ownerID, channelID int64, from, to time.Time) (int64, error) {
	return dao.db.CountFilesByScan(ownerID, channelID, from, to)
}
