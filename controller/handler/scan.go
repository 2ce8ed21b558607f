package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"tele-drive/controller/middleware"
	"tele-drive/controller/respond"
	"tele-drive/scanner"
	"tele-drive/service/scan_service"
)

// ScanHandler scan lifecycle handler
type ScanHandler struct {
	scanService *scan_service.ScanService
}

// NewScanHandler create scan handler instance
func NewScanHandler(scanService *scan_service.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// StartScan start a channel scan
// @Summary      Start scan
// @Description  Start scanning a channel for file attachments
// @Tags         Scan
// @Accept       json
// @Produce      json
// @Param        request  body      scanner.ScanPlan  true  "Scan plan"
// @Success      200      {object}  respond.Response
// @Failure      400      {object}  respond.Response
// @Failure      409      {object}  respond.Response
// @Router       /scan/start [post]
func (h *ScanHandler) StartScan(c *gin.Context) {
	var plan scanner.ScanPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		respond.InvalidParam(c, fmt.Sprintf("invalid scan plan: %v", err))
		return
	}

	session, err := h.scanService.StartScan(middleware.UserID(c), plan)
	if err != nil {
		if errors.Is(err, scanner.ErrScanAlreadyRunning) {
			respond.Conflict(c, err.Error())
			return
		}
		respond.InvalidParam(c, err.Error())
		return
	}

	respond.Success(c, gin.H{"scan_id": session.ID})
}

// CancelScan request cancellation of a running scan
// @Summary      Cancel scan
// @Description  Request cooperative cancellation of a scan
// @Tags         Scan
// @Accept       json
// @Produce      json
// @Param        id  path      int  true  "Scan ID"
// @Success      200  {object}  respond.Response
// @Failure      404  {object}  respond.Response
// @Router       /scan/{id}/cancel [post]
func (h *ScanHandler) CancelScan(c *gin.Context) {
	scanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.InvalidParam(c, "invalid scan id")
		return
	}

	status, err := h.scanService.CancelScan(middleware.UserID(c), scanID)
	if err != nil {
		if errors.Is(err, scan_service.ErrScanNotFound) {
			respond.NotFound(c, err.Error())
			return
		}
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, gin.H{"status": string(status)})
}

// GetScan get a scan status snapshot
// @Summary      Get scan status
// @Description  Get the current status snapshot of a scan
// @Tags         Scan
// @Accept       json
// @Produce      json
// @Param        id  path      int  true  "Scan ID"
// @Success      200  {object}  respond.Response{data=respond.ScanResponse}
// @Failure      404  {object}  respond.Response
// @Router       /scan/{id} [get]
func (h *ScanHandler) GetScan(c *gin.Context) {
	scanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.InvalidParam(c, "invalid scan id")
		return
	}

	session, err := h.scanService.GetScan(middleware.UserID(c), scanID)
	if err != nil {
		if errors.Is(err, scan_service.ErrScanNotFound) {
			respond.NotFound(c, err.Error())
			return
		}
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, respond.ToScanResponse(session))
}

// ListScans get scan history
// @Summary      List scans
// @Description  Get the caller's scan history, newest first
// @Tags         Scan
// @Accept       json
// @Produce      json
// @Param        limit  query     int  false  "Result limit"  default(50)
// @Success      200    {object}  respond.Response{data=[]respond.ScanResponse}
// @Failure      500    {object}  respond.Response
// @Router       /scans [get]
func (h *ScanHandler) ListScans(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	sessions, err := h.scanService.ListScans(middleware.UserID(c), limit)
	if err != nil {
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, respond.ToScanResponses(sessions))
}

// StreamEvents stream scan progress events over SSE
// @Summary      Stream scan events
// @Description  Server-sent events stream of scan progress; closes after a terminal event
// @Tags         Scan
// @Produce      text/event-stream
// @Param        id  path      int  true  "Scan ID"
// @Success      200  {string}  string  "event stream"
// @Failure      404  {object}  respond.Response
// @Router       /scan/{id}/events [get]
func (h *ScanHandler) StreamEvents(c *gin.Context) {
	scanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.InvalidParam(c, "invalid scan id")
		return
	}

	ch, cancel, err := h.scanService.Subscribe(middleware.UserID(c), scanID)
	if err != nil {
		if errors.Is(err, scan_service.ErrScanNotFound) {
			respond.NotFound(c, err.Error())
			return
		}
		respond.ServerError(c, err.Error())
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			data, err := json.Marshal(ev)
			if err != nil {
				return false
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Seq, ev.Kind, data)
			return !ev.Terminal()
		case <-c.Request.Context().Done():
			return false
		}
	})
}
