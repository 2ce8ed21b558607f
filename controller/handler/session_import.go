package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tele-drive/controller/middleware"
	"tele-drive/controller/respond"
	"tele-drive/credential"
	"tele-drive/service/import_service"
)

// SessionHandler session import and bootstrap handler
type SessionHandler struct {
	importService *import_service.ImportService
	sessions      *middleware.SessionStore
}

// NewSessionHandler create session handler instance
func NewSessionHandler(importService *import_service.ImportService, sessions *middleware.SessionStore) *SessionHandler {
	return &SessionHandler{
		importService: importService,
		sessions:      sessions,
	}
}

// ImportRequest session import parameters
type ImportRequest struct {
	TdataPath string `json:"tdata_path"` // empty = configured path or well-known locations
}

// Import import the desktop client's credentials and start a session
// @Summary      Import session
// @Description  Read the desktop client's local credentials, materialize a portable session and open a browser session
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        request  body      ImportRequest  true  "Import parameters"
// @Success      200      {object}  respond.Response{data=respond.ImportResponse}
// @Failure      400      {object}  respond.Response
// @Failure      404      {object}  respond.Response
// @Failure      422      {object}  respond.Response
// @Router       /session/import [post]
func (h *SessionHandler) Import(c *gin.Context) {
	// An empty body is fine: it means "use the configured or well-known path".
	var req ImportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.InvalidParam(c, err.Error())
			return
		}
	}

	result, err := h.importService.Import(req.TdataPath)
	if err != nil {
		writeImportError(c, err)
		return
	}

	session := h.sessions.Issue(result.User.ID)
	c.SetCookie(middleware.SessionCookieName, session.Token, 0, "/", "", false, true)

	respond.Success(c, respond.ImportResponse{
		Success: true,
		Message: "session imported",
		Layout:  result.Layout,
		User:    respond.ToUserResponse(result.User),
	})
}

// Logout drop the browser session
// @Summary      Logout
// @Description  Revoke the current browser session
// @Tags         Session
// @Produce      json
// @Success      200  {object}  respond.Response
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookieName); err == nil && token != "" {
		h.sessions.Revoke(token)
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	respond.Success(c, gin.H{"message": "logged out"})
}

// CSRFToken issue the session's CSRF token
// @Summary      Get CSRF token
// @Description  Get the CSRF token bound to the current session
// @Tags         Session
// @Produce      json
// @Success      200  {object}  respond.Response
// @Failure      401  {object}  respond.Response
// @Router       /csrf-token [get]
func (h *SessionHandler) CSRFToken(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || token == "" {
		respond.Unauthorized(c, "session required")
		return
	}
	session := h.sessions.Get(token)
	if session == nil {
		respond.Unauthorized(c, "session expired or unknown")
		return
	}
	respond.Success(c, gin.H{"csrf_token": session.CSRFToken})
}

// writeImportError maps credential failures onto HTTP statuses
func writeImportError(c *gin.Context, err error) {
	var unsupported *credential.UnsupportedLayoutError
	switch {
	case errors.Is(err, credential.ErrNoDesktopClient):
		respond.NotFound(c, err.Error())
	case errors.Is(err, credential.ErrNotAuthenticated):
		respond.Unauthorized(c, err.Error())
	case errors.Is(err, credential.ErrCredentialCorrupt):
		c.JSON(http.StatusUnprocessableEntity, respond.Response{
			Code:    http.StatusUnprocessableEntity,
			Message: err.Error(),
		})
	case errors.As(err, &unsupported):
		c.JSON(http.StatusUnprocessableEntity, respond.Response{
			Code:    http.StatusUnprocessableEntity,
			Message: err.Error(),
		})
	default:
		respond.ServerError(c, err.Error())
	}
}
