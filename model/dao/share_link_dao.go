package dao

import (
	"tele-drive/database"
	"tele-drive/model"
)

// ShareLinkDAO share link data access object
type ShareLinkDAO struct {
	db database.Database
}

// NewShareLinkDAO create share link DAO instance
func NewShareLinkDAO() *ShareLinkDAO {
	return &ShareLinkDAO{
		db: database.DB,
	}
}

// Create create share link record
func (dao *ShareLinkDAO) Create(link *model.ShareLink) error {
	return dao.db.CreateShareLink(link)
}

// GetByToken get share link by token, nil when absent
func (dao *ShareLinkDAO) GetByToken(token string) (*model.ShareLink, error) {
	link, err := dao.db.GetShareLinkByToken(token)
	if err == database.ErrNotFound {
		return nil, nil
	}
	return link, err
}

// ListByOwner get the owner's share links, newest first
func (dao *ShareLinkDAO) ListByOwner(ownerID int64) ([]*model.ShareLink, error) {
	return dao.db.ListShareLinksByOwner(ownerID)
}

// Update update share link record
func (dao *ShareLinkDAO) Update(link *model.ShareLink) error {
	return dao.db.UpdateShareLink(link)
}

// IncrementViews count a view if the link is active and under its cap.
// Returns false when the cap is already spent.
func (dao *ShareLinkDAO) IncrementViews(id int64) (bool, error) {
	return dao.db.IncrementShareLinkViews(id)
}

// IncrementDownloads count a download if the link is active and under its
// cap. Returns false when the cap is already spent.
func (dao *ShareLinkDAO) IncrementDownloads(id int64) (bool, error) {
	return dao.db.IncrementShareLinkDownloads(id)
}
