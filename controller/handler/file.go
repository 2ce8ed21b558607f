package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"tele-drive/controller/middleware"
	"tele-drive/controller/respond"
	"tele-drive/database"
	"tele-drive/model"
	"tele-drive/service/file_service"
)

// FileHandler file query, upload and download handler
type FileHandler struct {
	fileService *file_service.FileService
}

// NewFileHandler create file handler instance
func NewFileHandler(fileService *file_service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// ListFiles get file list with cursor pagination
// @Summary      Query file list
// @Description  Query the caller's files with cursor pagination and optional filters
// @Tags         File
// @Accept       json
// @Produce      json
// @Param        cursor     query  int     false  "Cursor" default(0)
// @Param        size       query  int     false  "Page size" default(50)
// @Param        folder_id  query  int     false  "Folder filter"
// @Param        type       query  string  false  "File type filter"
// @Param        favorite   query  bool    false  "Favorites only"
// @Param        search     query  string  false  "Filename/tags/description search"
// @Success      200        {object}  respond.Response{data=respond.FileListResponse}
// @Failure      500        {object}  respond.Response
// @Router       /files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	cursor, _ := strconv.ParseInt(c.DefaultQuery("cursor", "0"), 10, 64)
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))

	filter := database.FileFilter{
		OwnerID:      middleware.UserID(c),
		FileType:     model.FileType(c.Query("type")),
		FavoriteOnly: c.Query("favorite") == "true",
		Search:       c.Query("search"),
	}
	if v := c.Query("folder_id"); v != "" {
		folderID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respond.InvalidParam(c, "invalid folder_id")
			return
		}
		filter.FolderID = &folderID
	}

	files, nextCursor, hasMore, err := h.fileService.List(filter, cursor, size)
	if err != nil {
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, respond.ToFileListResponse(files, nextCursor, hasMore))
}

// GetFile get file details
// @Summary      Get file
// @Description  Get one of the caller's file records
// @Tags         File
// @Accept       json
// @Produce      json
// @Param        id  path      int  true  "File ID"
// @Success      200  {object}  respond.Response{data=respond.FileResponse}
// @Failure      404  {object}  respond.Response
// @Router       /files/{id} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.InvalidParam(c, "invalid file id")
		return
	}

	file, err := h.fileService.Get(middleware.UserID(c), fileID)
	if err != nil {
		respond.NotFound(c, err.Error())
		return
	}

	respond.Success(c, respond.ToFileResponse(file))
}

// FavoriteRequest favorite toggle parameters
type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// SetFavorite toggle the favorite flag
// @Summary      Set favorite
// @Description  Mark or unmark a file as favorite
// @Tags         File
// @Accept       json
// @Produce      json
// @Param        id       path      int              true  "File ID"
// @Param        request  body      FavoriteRequest  true  "Favorite flag"
// @Success      200      {object}  respond.Response{data=respond.FileResponse}
// @Failure      404      {object}  respond.Response
// @Router       /files/{id}/favorite [put]
func (h *FileHandler) SetFavorite(c *gin.Context) {
	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.InvalidParam(c, "invalid file id")
		return
	}

	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}

	file, err := h.fileService.SetFavorite(middleware.UserID(c), fileID, req.Favorite)
	if err != nil {
		respond.NotFound(c, err.Error())
		return
	}

	respond.Success(c, respond.ToFileResponse(file))
}

// DeleteFile soft-delete a file
// @Summary      Delete file
// @Description  Soft-delete one of the caller's files; local payloads are removed from storage
// @Tags         File
// @Accept       json
// @Produce      json
// @Param        id  path      int  true  "File ID"
// @Success      200  {object}  respond.Response
// @Failure      404  {object}  respond.Response
// @Router       /files/{id} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.InvalidParam(c, "invalid file id")
		return
	}

	if err := h.fileService.Delete(middleware.UserID(c), fileID); err != nil {
		respond.NotFound(c, err.Error())
		return
	}

	respond.Success(c, gin.H{"message": "deleted"})
}

// DownloadFile stream the file payload
// @Summary      Download file
// @Description  Stream the file payload; remote payloads are fetched through the messaging client
// @Tags         File
// @Produce      octet-stream
// @Param        id  path      int  true  "File ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  respond.Response
// @Router       /files/{id}/download [get]
func (h *FileHandler) DownloadFile(c *gin.Context) {
	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.InvalidParam(c, "invalid file id")
		return
	}

	file, err := h.fileService.Get(middleware.UserID(c), fileID)
	if err != nil {
		respond.NotFound(c, err.Error())
		return
	}

	writeFileHeaders(c, file)
	if _, err := h.fileService.Download(c.Request.Context(), middleware.UserID(c), fileID, c.Writer); err != nil {
		// Headers may already be out; the truncated body is the only signal.
		c.Abort()
	}
}

// Upload upload a file
// @Summary      Upload file
// @Description  Upload a file to local storage or to the configured channel
// @Tags         File
// @Accept       multipart/form-data
// @Produce      json
// @Param        file       formData  file    true   "Payload"
// @Param        folder_id  formData  int     false  "Destination folder"
// @Param        target     formData  string  false  "local or remote, empty = configured default"
// @Success      200        {object}  respond.Response{data=respond.FileResponse}
// @Failure      400        {object}  respond.Response
// @Failure      413        {object}  respond.Response
// @Router       /files/upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respond.InvalidParam(c, "file is required")
		return
	}

	req := file_service.UploadRequest{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Target:   c.PostForm("target"),
	}
	if v := c.PostForm("folder_id"); v != "" {
		folderID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respond.InvalidParam(c, "invalid folder_id")
			return
		}
		req.FolderID = &folderID
	}

	payload, err := header.Open()
	if err != nil {
		respond.ServerError(c, err.Error())
		return
	}
	defer payload.Close()

	record, err := h.fileService.Upload(c.Request.Context(), middleware.UserID(c), req, payload)
	if err != nil {
		switch {
		case errors.Is(err, file_service.ErrFileTooLarge):
			c.JSON(413, respond.Response{Code: 413, Message: err.Error()})
		case errors.Is(err, file_service.ErrFolderNotFound):
			respond.NotFound(c, err.Error())
		default:
			respond.InvalidParam(c, err.Error())
		}
		return
	}

	respond.Success(c, respond.ToFileResponse(record))
}

// writeFileHeaders download headers for a record
func writeFileHeaders(c *gin.Context, file *model.FileRecord) {
	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	if file.FileSize > 0 {
		c.Header("Content-Length", strconv.FormatInt(file.FileSize, 10))
	}
}
