package dao

import (
	"tele-drive/database"
	"tele-drive/model"
)

// ScanSessionDAO scan session data access object
type ScanSessionDAO struct {
	db database.Database
}

// NewScanSessionDAO create scan session DAO instance
func NewScanSessionDAO() *ScanSessionDAO {
	return &ScanSessionDAO{
		db: database.DB,
	}
}

// Create create scan session record
func (dao *ScanSessionDAO) Create(session *model.ScanSession) error {
	return dao.db.CreateScanSession(session)
}

// GetByID get scan session by id, nil when absent
func (dao *ScanSessionDAO) GetByID(id int64) (*model.ScanSession, error) {
	session, err := dao.db.GetScanSessionByID(id)
	if err == database.ErrNotFound {
		return nil, nil
	}
	return session, err
}

// GetRunningByOwner get the owner's pending/running scan, nil when none
func (dao *ScanSessionDAO) GetRunningByOwner(ownerID int64) (*model.ScanSession, error) {
	session, err := dao.db.GetRunningScanByOwner(ownerID)
	if err == database.ErrNotFound {
		return nil, nil
	}
	return session, err
}

// ListByOwner get the owner's scan history, newest first
func (dao *ScanSessionDAO) ListByOwner(ownerID int64, limit int) ([]*model.ScanSession, error) {
	return dao.db.ListScanSessionsByOwner(ownerID, limit)
}

// Update update scan session record
func (dao *ScanSessionDAO) Update(session *model.ScanSession) error {
	return dao.db.UpdateScanSession(session)
}
