package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"tele-drive/controller/middleware"
	"tele-drive/controller/respond"
	"tele-drive/service/file_service"
	"tele-drive/service/share_service"
)

// ShareHandler share link management and public share surface handler
type ShareHandler struct {
	shareService *share_service.ShareService
}

// NewShareHandler create share handler instance
func NewShareHandler(shareService *share_service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// CreateShare create a share link
// @Summary      Create share link
// @Description  Issue a tokenized share link for one of the caller's files or folders
// @Tags         Share
// @Accept       json
// @Produce      json
// @Param        request  body      share_service.CreateRequest  true  "Share parameters"
// @Success      200      {object}  respond.Response{data=respond.ShareLinkResponse}
// @Failure      400      {object}  respond.Response
// @Failure      404      {object}  respond.Response
// @Router       /shares [post]
func (h *ShareHandler) CreateShare(c *gin.Context) {
	var req share_service.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}

	link, err := h.shareService.Create(middleware.UserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, file_service.ErrFileNotFound), errors.Is(err, file_service.ErrFolderNotFound):
			respond.NotFound(c, err.Error())
		default:
			respond.InvalidParam(c, err.Error())
		}
		return
	}

	respond.Success(c, respond.ToShareLinkResponse(link))
}

// ListShares list the caller's share links
// @Summary      List share links
// @Description  List the caller's share links, newest first
// @Tags         Share
// @Accept       json
// @Produce      json
// @Success      200  {object}  respond.Response{data=[]respond.ShareLinkResponse}
// @Failure      500  {object}  respond.Response
// @Router       /shares [get]
func (h *ShareHandler) ListShares(c *gin.Context) {
	links, err := h.shareService.ListByOwner(middleware.UserID(c))
	if err != nil {
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, respond.ToShareLinkResponses(links))
}

// RevokeShare deactivate a share link
// @Summary      Revoke share link
// @Description  Deactivate one of the caller's share links
// @Tags         Share
// @Accept       json
// @Produce      json
// @Param        token  path      string  true  "Share token"
// @Success      200    {object}  respond.Response
// @Failure      404    {object}  respond.Response
// @Router       /shares/{token} [delete]
func (h *ShareHandler) RevokeShare(c *gin.Context) {
	if err := h.shareService.Revoke(middleware.UserID(c), c.Param("token")); err != nil {
		respond.NotFound(c, err.Error())
		return
	}
	respond.Success(c, gin.H{"message": "revoked"})
}

// Landing public share landing page
// @Summary      Share landing
// @Description  Resolve a share token; a successful view counts against the view cap
// @Tags         Share
// @Accept       json
// @Produce      json
// @Param        token     path      string  true   "Share token"
// @Param        password  query     string  false  "Link password"
// @Success      200       {object}  respond.Response{data=share_service.Landing}
// @Failure      403       {object}  respond.Response
// @Failure      404       {object}  respond.Response
// @Router       /share/{token} [get]
func (h *ShareHandler) Landing(c *gin.Context) {
	landing, err := h.shareService.View(c.Param("token"), c.Query("password"))
	if err != nil {
		writeShareError(c, err)
		return
	}
	respond.Success(c, landing)
}

// VerifyRequest password verification parameters
type VerifyRequest struct {
	Password string `json:"password"`
}

// VerifyPassword check a share link password
// @Summary      Verify share password
// @Description  Check a share link password without counting a view
// @Tags         Share
// @Accept       json
// @Produce      json
// @Param        token    path      string         true  "Share token"
// @Param        request  body      VerifyRequest  true  "Password"
// @Success      200      {object}  respond.Response
// @Failure      403      {object}  respond.Response
// @Failure      404      {object}  respond.Response
// @Router       /share/{token}/verify [post]
func (h *ShareHandler) VerifyPassword(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}

	if err := h.shareService.VerifyPassword(c.Param("token"), req.Password); err != nil {
		writeShareError(c, err)
		return
	}

	respond.Success(c, gin.H{"message": "password accepted"})
}

// Download download the shared file
// @Summary      Download shared file
// @Description  Stream the shared file; a successful download counts against the download cap
// @Tags         Share
// @Produce      octet-stream
// @Param        token     path      string  true   "Share token"
// @Param        password  query     string  false  "Link password"
// @Success      200       {file}    binary
// @Failure      403       {object}  respond.Response
// @Failure      404       {object}  respond.Response
// @Router       /share/{token}/download [get]
func (h *ShareHandler) Download(c *gin.Context) {
	file, err := h.shareService.BeginDownload(c.Param("token"), c.Query("password"))
	if err != nil {
		writeShareError(c, err)
		return
	}

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))

	if err := h.shareService.StreamFile(c.Request.Context(), file, c.Writer); err != nil {
		// Headers are already out; the truncated body is the only signal.
		c.Abort()
	}
}

// writeShareError maps share failures onto HTTP statuses
func writeShareError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, share_service.ErrShareNotFound):
		respond.NotFound(c, err.Error())
	case errors.Is(err, share_service.ErrShareExhausted):
		respond.Forbidden(c, err.Error())
	case errors.Is(err, share_service.ErrSharePassword):
		respond.Forbidden(c, err.Error())
	default:
		respond.ServerError(c, err.Error())
	}
}
