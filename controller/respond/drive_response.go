package respond

import (
	"time"

	"github.com/tidwall/gjson"

	"tele-drive/credential"
	"tele-drive/model"
)

// ScanResponse scan session snapshot response structure
type ScanResponse struct {
	ID              int64      `json:"id" example:"1"`
	ChannelName     string     `json:"channel_name" example:"@golang_news"`
	ChannelID       int64      `json:"channel_id" example:"1234567890"`
	Status          string     `json:"status" example:"running"`
	Direction       string     `json:"direction" example:"newest_first"`
	MessagesScanned int64      `json:"messages_scanned" example:"1500"`
	FilesFound      int64      `json:"files_found" example:"42"`
	TotalMessages   *int64     `json:"total_messages,omitempty" example:"9000"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// ToScanResponse convert scan session to response
func ToScanResponse(s *model.ScanSession) *ScanResponse {
	return &ScanResponse{
		ID:              s.ID,
		ChannelName:     s.ChannelName,
		ChannelID:       s.ChannelID,
		Status:          string(s.Status),
		Direction:       string(s.Direction),
		MessagesScanned: s.MessagesScanned,
		FilesFound:      s.FilesFound,
		TotalMessages:   s.TotalMessages,
		ErrorMessage:    s.ErrorMessage,
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
	}
}

// ToScanResponses convert scan session list to responses
func ToScanResponses(sessions []*model.ScanSession) []*ScanResponse {
	out := make([]*ScanResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, ToScanResponse(s))
	}
	return out
}

// FileResponse file record response structure
type FileResponse struct {
	ID               int64     `json:"id" example:"1"`
	UniqueID         string    `json:"unique_id" example:"1756450000000000_7"`
	Filename         string    `json:"filename" example:"report.pdf"`
	OriginalFilename string    `json:"original_filename,omitempty" example:"report.pdf"`
	MimeType         string    `json:"mime_type" example:"application/pdf"`
	FileSize         int64     `json:"file_size" example:"102400"`
	FileType         string    `json:"file_type" example:"document"`
	ContentHash      string    `json:"content_hash,omitempty"`
	TelegramChannel  string    `json:"telegram_channel,omitempty" example:"@golang_news"`
	StorageKind      string    `json:"storage_kind" example:"remote"`
	FolderID         *int64    `json:"folder_id,omitempty"`
	IsFavorite       bool      `json:"is_favorite"`
	DownloadCount    int64     `json:"download_count"`
	Tags             string    `json:"tags,omitempty"`
	Description      string    `json:"description,omitempty"`
	Width            int64     `json:"width,omitempty"`
	Height           int64     `json:"height,omitempty"`
	Duration         int64     `json:"duration,omitempty"` // seconds, audio/video only
	CreatedAt        time.Time `json:"created_at"`
}

// ToFileResponse convert file record to response. Media attributes are
// surfaced from the record's opaque metadata blob when present.
func ToFileResponse(f *model.FileRecord) *FileResponse {
	resp := &FileResponse{
		ID:               f.ID,
		UniqueID:         f.UniqueID,
		Filename:         f.Filename,
		OriginalFilename: f.OriginalFilename,
		MimeType:         f.MimeType,
		FileSize:         f.FileSize,
		FileType:         string(f.FileType),
		ContentHash:      f.ContentHash,
		TelegramChannel:  f.TelegramChannel,
		StorageKind:      string(f.StorageKind),
		FolderID:         f.FolderID,
		IsFavorite:       f.IsFavorite,
		DownloadCount:    f.DownloadCount,
		Tags:             f.Tags,
		Description:      f.Description,
		CreatedAt:        f.CreatedAt,
	}
	if f.FileMetadata != "" {
		resp.Width = gjson.Get(f.FileMetadata, "width").Int()
		resp.Height = gjson.Get(f.FileMetadata, "height").Int()
		resp.Duration = gjson.Get(f.FileMetadata, "duration").Int()
	}
	return resp
}

// FileListResponse cursor-paginated file list
type FileListResponse struct {
	Files      []*FileResponse `json:"files"`
	NextCursor int64           `json:"next_cursor"`
	HasMore    bool            `json:"has_more"`
}

// ToFileListResponse convert file record page to response
func ToFileListResponse(files []*model.FileRecord, nextCursor int64, hasMore bool) *FileListResponse {
	out := make([]*FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, ToFileResponse(f))
	}
	return &FileListResponse{Files: out, NextCursor: nextCursor, HasMore: hasMore}
}

// FolderResponse folder response structure
type FolderResponse struct {
	ID        int64     `json:"id" example:"1"`
	Name      string    `json:"name" example:"ebooks"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToFolderResponse convert folder to response
func ToFolderResponse(f *model.Folder) *FolderResponse {
	return &FolderResponse{ID: f.ID, Name: f.Name, ParentID: f.ParentID, CreatedAt: f.CreatedAt}
}

// ToFolderResponses convert folder list to responses
func ToFolderResponses(folders []*model.Folder) []*FolderResponse {
	out := make([]*FolderResponse, 0, len(folders))
	for _, f := range folders {
		out = append(out, ToFolderResponse(f))
	}
	return out
}

// ShareLinkResponse share link response structure
type ShareLinkResponse struct {
	ID           int64      `json:"id" example:"1"`
	Token        string     `json:"token" example:"Zm9vYmFyYmF6cXV4"`
	FileID       *int64     `json:"file_id,omitempty"`
	FolderID     *int64     `json:"folder_id,omitempty"`
	CanView      bool       `json:"can_view"`
	CanDownload  bool       `json:"can_download"`
	MaxViews     *int64     `json:"max_views,omitempty"`
	MaxDownloads *int64     `json:"max_downloads,omitempty"`
	Views        int64      `json:"views"`
	Downloads    int64      `json:"downloads"`
	HasPassword  bool       `json:"has_password"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToShareLinkResponse convert share link to response
func ToShareLinkResponse(l *model.ShareLink) *ShareLinkResponse {
	return &ShareLinkResponse{
		ID:           l.ID,
		Token:        l.Token,
		FileID:       l.FileID,
		FolderID:     l.FolderID,
		CanView:      l.CanView,
		CanDownload:  l.CanDownload,
		MaxViews:     l.MaxViews,
		MaxDownloads: l.MaxDownloads,
		Views:        l.Views,
		Downloads:    l.Downloads,
		HasPassword:  l.PasswordHash != "",
		ExpiresAt:    l.ExpiresAt,
		IsActive:     l.IsActive,
		CreatedAt:    l.CreatedAt,
	}
}

// ToShareLinkResponses convert share link list to responses
func ToShareLinkResponses(links []*model.ShareLink) []*ShareLinkResponse {
	out := make([]*ShareLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, ToShareLinkResponse(l))
	}
	return out
}

// ImportResponse session import response structure
type ImportResponse struct {
	Success bool              `json:"success" example:"true"`
	Message string            `json:"message" example:"session imported"`
	Layout  credential.Layout `json:"layout" example:"new_multi"`
	User    *UserResponse     `json:"user,omitempty"`
}

// UserResponse user response structure
type UserResponse struct {
	ID          int64  `json:"id" example:"1"`
	TelegramID  string `json:"telegram_id" example:"777000123"`
	PhoneNumber string `json:"phone_number,omitempty" example:"+15551234567"`
	Username    string `json:"username,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	Role        string `json:"role" example:"user"`
}

// ToUserResponse convert user to response
func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		TelegramID:  u.TelegramID,
		PhoneNumber: u.PhoneNumber,
		Username:    u.Username,
		FirstName:   u.FirstName,
		Role:        string(u.Role),
	}
}
