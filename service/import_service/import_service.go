// Package import_service bridges the desktop client credential store into a
// portable session artifact and bootstraps the owning user.
package import_service

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"tele-drive/conf"
	"tele-drive/credential"
	"tele-drive/model"
	"tele-drive/model/dao"
	"tele-drive/session"
)

// ImportService session import service
type ImportService struct {
	userDAO *dao.UserDAO
}

// NewImportService create import service instance
func NewImportService() *ImportService {
	return &ImportService{
		userDAO: dao.NewUserDAO(),
	}
}

// ImportResult outcome of a session import
type ImportResult struct {
	Layout      credential.Layout `json:"layout"`
	SessionPath string            `json:"session_path"`
	User        *model.User       `json:"user"`
}

// Import locates and decrypts the desktop client tree, materializes the
// portable session artifact and returns the bootstrapped user. An explicit
// tdataPath overrides both the configured path and platform probing.
func (s *ImportService) Import(tdataPath string) (*ImportResult, error) {
	path := tdataPath
	if path == "" {
		path = conf.Cfg.Desktop.TdataPath
	}
	if path == "" {
		located, err := credential.Locate()
		if err != nil {
			return nil, err
		}
		path = located
	}

	report, err := credential.Probe(path)
	if err != nil {
		return nil, err
	}

	cred, err := credential.Read(path)
	if err != nil {
		return nil, err
	}

	target := conf.SessionFilePath()
	if err := session.Materialize(cred, target); err != nil {
		return nil, fmt.Errorf("materialize session: %w", err)
	}
	log.Printf("[import] session artifact written for user %d (dc %d, layout %s)",
		cred.UserID, cred.PrimaryDCID, report.Layout)

	user, err := s.bootstrapUser(cred)
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Layout:      report.Layout,
		SessionPath: target,
		User:        user,
	}, nil
}

// bootstrapUser finds or creates the user row bound to the account
func (s *ImportService) bootstrapUser(cred *credential.AccountCredential) (*model.User, error) {
	telegramID := strconv.FormatInt(cred.UserID, 10)
	now := time.Now().UTC()

	user, err := s.userDAO.GetByTelegramID(telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &model.User{
			TelegramID:  telegramID,
			Role:        model.RoleUser,
			IsActive:    true,
			LastLoginAt: &now,
		}
		if err := s.userDAO.Create(user); err != nil {
			return nil, err
		}
		log.Printf("[import] created user %d for account %s", user.ID, telegramID)
		return user, nil
	}

	user.LastLoginAt = &now
	if err := s.userDAO.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
