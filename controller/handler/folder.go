package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"tele-drive/controller/middleware"
	"tele-drive/controller/respond"
	"tele-drive/service/file_service"
)

// FolderHandler folder management handler
type FolderHandler struct {
	fileService *file_service.FileService
}

// NewFolderHandler create folder handler instance
func NewFolderHandler(fileService *file_service.FileService) *FolderHandler {
	return &FolderHandler{fileService: fileService}
}

// CreateFolderRequest folder creation parameters
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// CreateFolder create a folder
// @Summary      Create folder
// @Description  Create a folder under the given parent (omitted = root)
// @Tags         Folder
// @Accept       json
// @Produce      json
// @Param        request  body      CreateFolderRequest  true  "Folder parameters"
// @Success      200      {object}  respond.Response{data=respond.FolderResponse}
// @Failure      400      {object}  respond.Response
// @Router       /folders [post]
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}

	folder, err := h.fileService.CreateFolder(middleware.UserID(c), req.Name, req.ParentID)
	if err != nil {
		if errors.Is(err, file_service.ErrFolderNotFound) {
			respond.NotFound(c, err.Error())
			return
		}
		respond.InvalidParam(c, err.Error())
		return
	}

	respond.Success(c, respond.ToFolderResponse(folder))
}

// ListFolders list folders under a parent
// @Summary      List folders
// @Description  List the caller's folders under the given parent (omitted = roots)
// @Tags         Folder
// @Accept       json
// @Produce      json
// @Param        parent_id  query     int  false  "Parent folder"
// @Success      200        {object}  respond.Response{data=[]respond.FolderResponse}
// @Failure      500        {object}  respond.Response
// @Router       /folders [get]
func (h *FolderHandler) ListFolders(c *gin.Context) {
	var parentID *int64
	if v := c.Query("parent_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respond.InvalidParam(c, "invalid parent_id")
			return
		}
		parentID = &id
	}

	folders, err := h.fileService.ListFolders(middleware.UserID(c), parentID)
	if err != nil {
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, respond.ToFolderResponses(folders))
}

// MoveFolderRequest folder move parameters
type MoveFolderRequest struct {
	ParentID *int64 `json:"parent_id"` // nil = move to root
}

// MoveFolder reparent a folder
// @Summary      Move folder
// @Description  Move a folder under a new parent; moves creating a cycle are rejected
// @Tags         Folder
// @Accept       json
// @Produce      json
// @Param        id       path      int                true  "Folder ID"
// @Param        request  body      MoveFolderRequest  true  "New parent"
// @Success      200      {object}  respond.Response{data=respond.FolderResponse}
// @Failure      400      {object}  respond.Response
// @Failure      404      {object}  respond.Response
// @Router       /folders/{id}/move [put]
func (h *FolderHandler) MoveFolder(c *gin.Context) {
	folderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.InvalidParam(c, "invalid folder id")
		return
	}

	var req MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}

	folder, err := h.fileService.MoveFolder(middleware.UserID(c), folderID, req.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, file_service.ErrFolderCycle):
			respond.InvalidParam(c, err.Error())
		case errors.Is(err, file_service.ErrFolderNotFound):
			respond.NotFound(c, err.Error())
		default:
			respond.ServerError(c, err.Error())
		}
		return
	}

	respond.Success(c, respond.ToFolderResponse(folder))
}

// DeleteFolder soft-delete a folder tree
// @Summary      Delete folder
// @Description  Soft-delete a folder, its subfolders and their files
// @Tags         Folder
// @Accept       json
// @Produce      json
// @Param        id  path      int  true  "Folder ID"
// @Success      200  {object}  respond.Response
// @Failure      404  {object}  respond.Response
// @Router       /folders/{id} [delete]
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	folderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.InvalidParam(c, "invalid folder id")
		return
	}

	if err := h.fileService.DeleteFolder(middleware.UserID(c), folderID); err != nil {
		if errors.Is(err, file_service.ErrFolderNotFound) {
			respond.NotFound(c, err.Error())
			return
		}
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, gin.H{"message": "deleted"})
}
