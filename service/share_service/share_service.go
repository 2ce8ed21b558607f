// Package share_service issues and serves tokenized share links with view
// and download caps.
package share_service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tele-drive/model"
	"tele-drive/model/dao"
	"tele-drive/service/file_service"
)

var (
	// ErrShareNotFound token does not resolve to a link
	ErrShareNotFound = errors.New("share link not found")

	// ErrShareExhausted the link is inactive, expired, or a cap was reached
	ErrShareExhausted = errors.New("share link is no longer available")

	// ErrSharePassword a password is required or the supplied one is wrong
	ErrSharePassword = errors.New("share link password required or incorrect")
)

// ShareService share link service
type ShareService struct {
	shareDAO *dao.ShareLinkDAO
	files    *file_service.FileService
}

// NewShareService create share service instance
func NewShareService(files *file_service.FileService) *ShareService {
	return &ShareService{
		shareDAO: dao.NewShareLinkDAO(),
		files:    files,
	}
}

// CreateRequest share link creation parameters
type CreateRequest struct {
	FileID       *int64 `json:"file_id"`
	FolderID     *int64 `json:"folder_id"`
	Password     string `json:"password"`
	CanView      bool   `json:"can_view"`
	CanDownload  bool   `json:"can_download"`
	MaxViews     *int64 `json:"max_views"`
	MaxDownloads *int64 `json:"max_downloads"`
	ExpiresIn    int64  `json:"expires_in_hours"` // 0 = never
}

// Create issues a share link for one of the owner's files or folders
func (s *ShareService) Create(ownerID int64, req CreateRequest) (*model.ShareLink, error) {
	if (req.FileID == nil) == (req.FolderID == nil) {
		return nil, fmt.Errorf("exactly one of file_id and folder_id is required")
	}
	if !req.CanView && !req.CanDownload {
		return nil, fmt.Errorf("at least one of can_view and can_download is required")
	}
	if req.FileID != nil {
		if _, err := s.files.Get(ownerID, *req.FileID); err != nil {
			return nil, err
		}
	}
	if req.FolderID != nil {
		if _, err := s.files.GetFolder(ownerID, *req.FolderID); err != nil {
			return nil, err
		}
	}
	if req.MaxViews != nil && *req.MaxViews < 0 {
		return nil, fmt.Errorf("max_views must not be negative")
	}
	if req.MaxDownloads != nil && *req.MaxDownloads < 0 {
		return nil, fmt.Errorf("max_downloads must not be negative")
	}

	link := &model.ShareLink{
		FileID:       req.FileID,
		FolderID:     req.FolderID,
		OwnerID:      ownerID,
		Token:        newToken(),
		CanView:      req.CanView,
		CanDownload:  req.CanDownload,
		MaxViews:     req.MaxViews,
		MaxDownloads: req.MaxDownloads,
		IsActive:     true,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		link.PasswordHash = string(hash)
	}
	if req.ExpiresIn > 0 {
		expires := time.Now().UTC().Add(time.Duration(req.ExpiresIn) * time.Hour)
		link.ExpiresAt = &expires
	}

	if err := s.shareDAO.Create(link); err != nil {
		return nil, err
	}
	log.Printf("[share] owner %d created link %s", ownerID, link.Token)
	return link, nil
}

// ListByOwner the owner's share links, newest first
func (s *ShareService) ListByOwner(ownerID int64) ([]*model.ShareLink, error) {
	return s.shareDAO.ListByOwner(ownerID)
}

// Revoke deactivates one of the owner's links
func (s *ShareService) Revoke(ownerID int64, token string) error {
	link, err := s.shareDAO.GetByToken(token)
	if err != nil {
		return err
	}
	if link == nil || link.OwnerID != ownerID {
		return ErrShareNotFound
	}
	link.IsActive = false
	return s.shareDAO.Update(link)
}

// Landing share landing payload
type Landing struct {
	Token            string            `json:"token"`
	RequiresPassword bool              `json:"requires_password"`
	CanDownload      bool              `json:"can_download"`
	File             *model.FileRecord `json:"file,omitempty"`
	Folder           *model.Folder     `json:"folder,omitempty"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
}

// View resolves a landing request and counts the view. Password-protected
// links reveal nothing until the password is verified.
func (s *ShareService) View(token, password string) (*Landing, error) {
	link, err := s.usableLink(token)
	if err != nil {
		return nil, err
	}
	if !link.CanView {
		return nil, ErrShareExhausted
	}
	if err := s.checkPassword(link, password); err != nil {
		if password == "" {
			// Not an error: the landing page asks for the password.
			return &Landing{Token: link.Token, RequiresPassword: true}, nil
		}
		return nil, err
	}

	// Guarded in the database so two concurrent views cannot both take the
	// last allowed one.
	counted, err := s.shareDAO.IncrementViews(link.ID)
	if err != nil {
		return nil, err
	}
	if !counted {
		return nil, ErrShareExhausted
	}

	landing := &Landing{
		Token:       link.Token,
		CanDownload: link.CanDownload,
		ExpiresAt:   link.ExpiresAt,
	}
	if link.FileID != nil {
		file, err := s.files.Get(link.OwnerID, *link.FileID)
		if err != nil {
			return nil, ErrShareExhausted
		}
		landing.File = file
	}
	if link.FolderID != nil {
		folder, err := s.files.GetFolder(link.OwnerID, *link.FolderID)
		if err != nil {
			return nil, ErrShareExhausted
		}
		landing.Folder = folder
	}
	return landing, nil
}

// VerifyPassword checks a password without counting a view
func (s *ShareService) VerifyPassword(token, password string) error {
	link, err := s.usableLink(token)
	if err != nil {
		return err
	}
	return s.checkPassword(link, password)
}

// BeginDownload runs the usability, password and cap checks and counts the
// download, returning the record to stream. Folder links cannot be
// downloaded directly. The count happens before any payload byte moves so a
// cap of N never serves N+1 payloads.
func (s *ShareService) BeginDownload(token, password string) (*model.FileRecord, error) {
	link, err := s.usableLink(token)
	if err != nil {
		return nil, err
	}
	if !link.DownloadUsable(time.Now().UTC()) {
		return nil, ErrShareExhausted
	}
	if err := s.checkPassword(link, password); err != nil {
		return nil, err
	}
	if link.FileID == nil {
		return nil, fmt.Errorf("share link does not target a file")
	}

	file, err := s.files.Get(link.OwnerID, *link.FileID)
	if err != nil {
		return nil, ErrShareExhausted
	}

	counted, err := s.shareDAO.IncrementDownloads(link.ID)
	if err != nil {
		return nil, err
	}
	if !counted {
		return nil, ErrShareExhausted
	}
	return file, nil
}

// StreamFile copies the shared file's payload into sink
func (s *ShareService) StreamFile(ctx context.Context, file *model.FileRecord, sink io.Writer) error {
	return s.files.StreamPayload(ctx, file, sink)
}

// Download streams the shared file into sink, counting the download
func (s *ShareService) Download(ctx context.Context, token, password string, sink io.Writer) (*model.FileRecord, error) {
	file, err := s.BeginDownload(token, password)
	if err != nil {
		return nil, err
	}
	if err := s.StreamFile(ctx, file, sink); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *ShareService) usableLink(token string) (*model.ShareLink, error) {
	link, err := s.shareDAO.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrShareNotFound
	}
	if !link.Usable(time.Now().UTC()) {
		return nil, ErrShareExhausted
	}
	return link, nil
}

func (s *ShareService) checkPassword(link *model.ShareLink, password string) error {
	if link.PasswordHash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(link.PasswordHash), []byte(password)); err != nil {
		return ErrSharePassword
	}
	return nil
}

// newToken URL-safe token with 192 bits of entropy
func newToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
