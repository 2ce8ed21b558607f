package dao

import (
	"tele-drive/database"
	"tele-drive/model"
)

// FolderDAO folder data access object
type FolderDAO struct {
	db database.Database
}

// NewFolderDAO create folder DAO instance
func NewFolderDAO() *FolderDAO {
	return &FolderDAO{
		db: database.DB,
	}
}

// Create create folder record
func (dao *FolderDAO) Create(folder *model.Folder) error {
	return dao.db.CreateFolder(folder)
}

// GetByID get folder by id, nil when absent or soft-deleted
func (dao *FolderDAO) GetByID(id int64) (*model.Folder, error) {
	folder, err := dao.db.GetFolderByID(id)
	if err == database.ErrNotFound {
		return nil, nil
	}
	return folder, err
}

// List list an owner's folders under parentID (nil = roots)
func (dao *FolderDAO) List(ownerID int64, parentID *int64) ([]*model.Folder, error) {
	return dao.db.ListFolders(ownerID, parentID)
}

// Update update folder record
func (dao *FolderDAO) Update(folder *model.Folder) error {
	return dao.db.UpdateFolder(folder)
}

// SoftDelete mark the folder deleted
func (dao *FolderDAO) SoftDelete(id int64) error {
	return dao.db.SoftDeleteFolder(id)
}

// IsAncestor walks up from folderID and reports whether candidateID is on the
// path to the root. Used as the creation/move-time cycle check.
func (dao *FolderDAO) IsAncestor(candidateID, folderID int64) (bool, error) {
	current := folderID
	for i := 0; i < 256; i++ { // depth guard against corrupted trees
		folder, err := dao.GetByID(current)
		if err != nil || folder == nil {
			return false, err
		}
		if folder.ID == candidateID {
			return true, nil
		}
		if folder.ParentID == nil {
			return false, nil
		}
		current = *folder.ParentID
	}
	return true, nil // too deep, treat as cyclic
}
