package model

import "time"

// Folder user folder, self-referential forest per owner
type Folder struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	ParentID *int64 `gorm:"index" json:"parent_id"` // nil = root of the owner's forest
	OwnerID  int64  `gorm:"index;not null" json:"owner_id"`

	IsDeleted bool `gorm:"index;default:false" json:"is_deleted"` // soft delete, cascades logically to descendants

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specify table name
func (Folder) TableName() string {
	return "tb_folder"
}
