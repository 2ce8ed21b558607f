// Package file_service serves file metadata and payloads: listing, download
// streaming, uploads and folder management.
package file_service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"tele-drive/conf"
	"tele-drive/database"
	"tele-drive/model"
	"tele-drive/model/dao"
	"tele-drive/scanner"
	"tele-drive/storage"
	"tele-drive/telegram"
	"tele-drive/tool"
)

var (
	// ErrFileNotFound file absent, deleted, or owned by someone else
	ErrFileNotFound = errors.New("file not found")

	// ErrFolderNotFound folder absent, deleted, or owned by someone else
	ErrFolderNotFound = errors.New("folder not found")

	// ErrFolderCycle the move would make a folder its own ancestor
	ErrFolderCycle = errors.New("folder move would create a cycle")

	// ErrFileTooLarge upload exceeds the configured cap
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

	// ErrPayloadUnavailable the record has no fetchable payload
	ErrPayloadUnavailable = errors.New("file payload is unavailable")
)

// FileService file and folder service
type FileService struct {
	fileDAO   *dao.FileRecordDAO
	folderDAO *dao.FolderDAO
	store     storage.Storage
	client    telegram.Client
}

// NewFileService create file service instance
func NewFileService(store storage.Storage, client telegram.Client) *FileService {
	return &FileService{
		fileDAO:   dao.NewFileRecordDAO(),
		folderDAO: dao.NewFolderDAO(),
		store:     store,
		client:    client,
	}
}

// List cursor-paginated file listing
func (s *FileService) List(filter database.FileFilter, cursor int64, size int) ([]*model.FileRecord, int64, bool, error) {
	if size <= 0 || size > 200 {
		size = 50
	}
	return s.fileDAO.ListWithCursor(filter, cursor, size)
}

// Get returns the owner's file record
func (s *FileService) Get(ownerID, fileID int64) (*model.FileRecord, error) {
	file, err := s.fileDAO.GetByID(fileID)
	if err != nil {
		return nil, err
	}
	if file == nil || file.OwnerID != ownerID || file.IsDeleted {
		return nil, ErrFileNotFound
	}
	return file, nil
}

// SetFavorite toggles the favorite flag
func (s *FileService) SetFavorite(ownerID, fileID int64, favorite bool) (*model.FileRecord, error) {
	file, err := s.Get(ownerID, fileID)
	if err != nil {
		return nil, err
	}
	file.IsFavorite = favorite
	if err := s.fileDAO.Update(file); err != nil {
		return nil, err
	}
	return file, nil
}

// Delete soft-deletes the file; local payloads are removed from storage
func (s *FileService) Delete(ownerID, fileID int64) error {
	file, err := s.Get(ownerID, fileID)
	if err != nil {
		return err
	}
	if file.StorageKind == model.StorageKindLocal && file.LocalPath != "" {
		if err := s.store.Delete(file.LocalPath); err != nil {
			log.Printf("[file] delete payload %s: %v", file.LocalPath, err)
		}
	}
	return s.fileDAO.SoftDelete(fileID)
}

// Download streams the payload into sink and bumps the download counter.
// Local payloads come from storage; remote ones are fetched through the
// messaging facade.
func (s *FileService) Download(ctx context.Context, ownerID, fileID int64, sink io.Writer) (*model.FileRecord, error) {
	file, err := s.Get(ownerID, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.StreamPayload(ctx, file, sink); err != nil {
		return nil, err
	}
	if err := s.fileDAO.IncrementDownloadCount(fileID); err != nil {
		log.Printf("[file] bump download count for %d: %v", fileID, err)
	}
	return file, nil
}

// StreamPayload copies the record's payload into sink without touching
// counters. Share downloads use this directly.
func (s *FileService) StreamPayload(ctx context.Context, file *model.FileRecord, sink io.Writer) error {
	switch file.StorageKind {
	case model.StorageKindLocal:
		if file.LocalPath == "" {
			return ErrPayloadUnavailable
		}
		rc, err := s.store.Open(file.LocalPath)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrPayloadUnavailable
			}
			return err
		}
		defer rc.Close()
		_, err = io.Copy(sink, rc)
		return err

	case model.StorageKindRemote:
		if !file.HasOrigin() && len(file.TelegramFileReference) == 0 {
			return ErrPayloadUnavailable
		}
		desc := &telegram.MediaDescriptor{
			ChannelID:     file.TelegramChannelID,
			MessageID:     file.TelegramMessageID,
			FileReference: file.TelegramFileReference,
			Size:          file.FileSize,
			MimeType:      file.MimeType,
		}
		_, err := s.client.DownloadMedia(ctx, desc, sink)
		return err

	default:
		return ErrPayloadUnavailable
	}
}

// UploadRequest one upload
type UploadRequest struct {
	Filename string
	MimeType string
	Size     int64
	FolderID *int64
	Target   string // local/remote, empty = configured default
}

// Upload stores the payload and creates its record. The local target writes
// to the storage backend; the remote target sends the payload to the
// configured channel and indexes the resulting message.
func (s *FileService) Upload(ctx context.Context, ownerID int64, req UploadRequest, payload io.Reader) (*model.FileRecord, error) {
	if req.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if req.Size > conf.Cfg.Uploader.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if req.MimeType == "" {
		req.MimeType = "application/octet-stream"
	}
	if req.FolderID != nil {
		if _, err := s.GetFolder(ownerID, *req.FolderID); err != nil {
			return nil, err
		}
	}

	target := req.Target
	if target == "" {
		target = conf.Cfg.Uploader.DefaultTarget
	}

	switch target {
	case "local":
		return s.uploadLocal(ownerID, req, payload)
	case "remote":
		return s.uploadRemote(ctx, ownerID, req, payload)
	default:
		return nil, fmt.Errorf("unknown upload target %q", target)
	}
}

func (s *FileService) uploadLocal(ownerID int64, req UploadRequest, payload io.Reader) (*model.FileRecord, error) {
	uniqueID := tool.NewUniqueID()
	key := fmt.Sprintf("%d/%s_%s", ownerID, uniqueID, sanitizeFilename(req.Filename))

	hasher := sha256.New()
	n, err := s.store.Save(key, io.TeeReader(payload, hasher))
	if err != nil {
		return nil, fmt.Errorf("store payload: %w", err)
	}

	record := &model.FileRecord{
		UniqueID:         uniqueID,
		OwnerID:          ownerID,
		FolderID:         req.FolderID,
		Filename:         req.Filename,
		OriginalFilename: req.Filename,
		MimeType:         req.MimeType,
		FileSize:         n,
		FileType:         scanner.Classify(req.MimeType, req.Filename),
		ContentHash:      hex.EncodeToString(hasher.Sum(nil)),
		StorageKind:      model.StorageKindLocal,
		LocalPath:        key,
	}
	if _, err := s.fileDAO.Upsert(record); err != nil {
		s.store.Delete(key)
		return nil, err
	}
	log.Printf("[file] owner %d uploaded %s (%d bytes, local)", ownerID, req.Filename, n)
	return record, nil
}

func (s *FileService) uploadRemote(ctx context.Context, ownerID int64, req UploadRequest, payload io.Reader) (*model.FileRecord, error) {
	channel := conf.Cfg.Uploader.SavedChannel
	if channel == "" {
		return nil, fmt.Errorf("uploader.saved_channel is not configured")
	}
	handle, err := telegram.ParseHandle(channel)
	if err != nil {
		return nil, err
	}
	entity, err := s.client.ResolveEntity(ctx, handle)
	if err != nil {
		return nil, err
	}

	msg, err := s.client.SendMedia(ctx, entity, req.Filename, req.MimeType, req.Size, payload)
	if err != nil {
		return nil, fmt.Errorf("send media: %w", err)
	}

	record := &model.FileRecord{
		UniqueID:          tool.NewUniqueID(),
		OwnerID:           ownerID,
		FolderID:          req.FolderID,
		Filename:          req.Filename,
		OriginalFilename:  req.Filename,
		MimeType:          req.MimeType,
		FileSize:          req.Size,
		FileType:          scanner.Classify(req.MimeType, req.Filename),
		TelegramChannel:   channel,
		TelegramChannelID: entity.ID,
		TelegramMessageID: msg.ID,
		StorageKind:       model.StorageKindRemote,
	}
	if msg.Media != nil {
		record.TelegramFileReference = msg.Media.FileReference
		if msg.Media.Size > 0 {
			record.FileSize = msg.Media.Size
		}
	}
	if _, err := s.fileDAO.Upsert(record); err != nil {
		return nil, err
	}
	log.Printf("[file] owner %d uploaded %s to %s (remote)", ownerID, req.Filename, channel)
	return record, nil
}

// sanitizeFilename keeps storage keys flat and portable
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "file"
	}
	return name
}

// Folder operations

// GetFolder returns the owner's folder
func (s *FileService) GetFolder(ownerID, folderID int64) (*model.Folder, error) {
	folder, err := s.folderDAO.GetByID(folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil || folder.OwnerID != ownerID {
		return nil, ErrFolderNotFound
	}
	return folder, nil
}

// CreateFolder creates a folder under parentID (nil = root)
func (s *FileService) CreateFolder(ownerID int64, name string, parentID *int64) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}
	if parentID != nil {
		if _, err := s.GetFolder(ownerID, *parentID); err != nil {
			return nil, err
		}
	}
	folder := &model.Folder{
		Name:     name,
		OwnerID:  ownerID,
		ParentID: parentID,
	}
	if err := s.folderDAO.Create(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// ListFolders lists the owner's folders under parentID (nil = roots)
func (s *FileService) ListFolders(ownerID int64, parentID *int64) ([]*model.Folder, error) {
	return s.folderDAO.List(ownerID, parentID)
}

// MoveFolder reparents a folder, rejecting moves that would create a cycle
func (s *FileService) MoveFolder(ownerID, folderID int64, newParentID *int64) (*model.Folder, error) {
	folder, err := s.GetFolder(ownerID, folderID)
	if err != nil {
		return nil, err
	}
	if newParentID != nil {
		if *newParentID == folderID {
			return nil, ErrFolderCycle
		}
		if _, err := s.GetFolder(ownerID, *newParentID); err != nil {
			return nil, err
		}
		cyclic, err := s.folderDAO.IsAncestor(folderID, *newParentID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, ErrFolderCycle
		}
	}
	folder.ParentID = newParentID
	if err := s.folderDAO.Update(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// DeleteFolder soft-deletes the folder, its subfolders and their files
func (s *FileService) DeleteFolder(ownerID, folderID int64) error {
	if _, err := s.GetFolder(ownerID, folderID); err != nil {
		return err
	}
	return s.deleteFolderTree(ownerID, folderID, 0)
}

func (s *FileService) deleteFolderTree(ownerID, folderID int64, depth int) error {
	if depth > 256 {
		return fmt.Errorf("folder tree too deep")
	}

	children, err := s.folderDAO.List(ownerID, &folderID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.deleteFolderTree(ownerID, child.ID, depth+1); err != nil {
			return err
		}
	}

	fid := folderID
	for {
		files, _, hasMore, err := s.fileDAO.ListWithCursor(database.FileFilter{OwnerID: ownerID, FolderID: &fid}, 0, 200)
		if err != nil {
			return err
		}
		for _, file := range files {
			if err := s.Delete(ownerID, file.ID); err != nil {
				return err
			}
		}
		if !hasMore {
			break
		}
	}

	return s.folderDAO.SoftDelete(folderID)
}
