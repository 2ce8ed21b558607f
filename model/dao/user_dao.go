package dao

import (
	"tele-drive/database"
	"tele-drive/model"
)

// UserDAO user data access object
type UserDAO struct {
	db database.Database
}

// NewUserDAO create user DAO instance
func NewUserDAO() *UserDAO {
	return &UserDAO{
		db: database.DB,
	}
}

// Create create user record
func (dao *UserDAO) Create(user *model.User) error {
	return dao.db.CreateUser(user)
}

// GetByID get user by id, nil when absent
func (dao *UserDAO) GetByID(id int64) (*model.User, error) {
	user, err := dao.db.GetUserByID(id)
	if err == database.ErrNotFound {
		return nil, nil
	}
	return user, err
}

// GetByTelegramID get user by telegram account id, nil when absent
func (dao *UserDAO) GetByTelegramID(telegramID string) (*model.User, error) {
	user, err := dao.db.GetUserByTelegramID(telegramID)
	if err == database.ErrNotFound {
		return nil, nil
	}
	return user, err
}

// Update update user record
func (dao *UserDAO) Update(user *model.User) error {
	return dao.db.UpdateUser(user)
}
