// Package scan_service orchestrates scan lifecycle on behalf of the HTTP
// surface: admission, cancellation, status snapshots and event streaming.
package scan_service

import (
	"errors"
	"log"

	"tele-drive/database"
	"tele-drive/event"
	"tele-drive/model"
	"tele-drive/model/dao"
	"tele-drive/scanner"
	"tele-drive/telegram"
)

var (
	// ErrScanNotFound no scan session with that id for this owner
	ErrScanNotFound = errors.New("scan session not found")
)

// ScanService scan orchestration service
type ScanService struct {
	engine  *scanner.Engine
	bus     *event.Bus
	client  telegram.Client
	scanDAO *dao.ScanSessionDAO
}

// NewScanService create scan service instance
func NewScanService(engine *scanner.Engine, bus *event.Bus, client telegram.Client) *ScanService {
	return &ScanService{
		engine:  engine,
		bus:     bus,
		client:  client,
		scanDAO: dao.NewScanSessionDAO(),
	}
}

// StartScan validates and admits a scan for the owner
func (s *ScanService) StartScan(ownerID int64, plan scanner.ScanPlan) (*model.ScanSession, error) {
	session, err := s.engine.Start(s.client, ownerID, plan)
	if err != nil {
		return nil, err
	}
	log.Printf("[scan] owner %d started scan %d on %s", ownerID, session.ID, plan.Channel)
	return session, nil
}

// CancelScan requests cancellation of the owner's scan and reports the
// status as currently stored. Cancellation is co-operative: the scan flips
// to cancelled only once the engine observes the request at a batch
// boundary. Cancelling a scan that already reached a terminal state is not
// an error; the terminal status is returned as-is.
func (s *ScanService) CancelScan(ownerID, scanID int64) (model.ScanStatus, error) {
	session, err := s.getOwned(ownerID, scanID)
	if err != nil {
		return "", err
	}
	if session.Status.Terminal() {
		return session.Status, nil
	}

	if err := s.engine.Cancel(scanID); err != nil && !errors.Is(err, scanner.ErrScanNotRunning) {
		return "", err
	}
	// ErrScanNotRunning means the scan raced to completion; either way the
	// store holds the truthful status.
	session, err = s.getOwned(ownerID, scanID)
	if err != nil {
		return "", err
	}
	return session.Status, nil
}

// GetScan returns the owner's scan status snapshot. Terminal snapshots are
// served from cache when available.
func (s *ScanService) GetScan(ownerID, scanID int64) (*model.ScanSession, error) {
	var cached model.ScanSession
	if err := database.GetCache(database.ScanStatusCacheKey(scanID), &cached); err == nil {
		if cached.OwnerID == ownerID && cached.Status.Terminal() {
			return &cached, nil
		}
	}

	session, err := s.getOwned(ownerID, scanID)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		database.SetCache(database.ScanStatusCacheKey(scanID), session)
	}
	return session, nil
}

// ListScans returns the owner's scan history, newest first
func (s *ScanService) ListScans(ownerID int64, limit int) ([]*model.ScanSession, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.scanDAO.ListByOwner(ownerID, limit)
}

// Subscribe attaches to the scan's progress stream after an ownership check
func (s *ScanService) Subscribe(ownerID, scanID int64) (<-chan event.Event, func(), error) {
	if _, err := s.getOwned(ownerID, scanID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.bus.Subscribe(scanID)
	return ch, cancel, nil
}

func (s *ScanService) getOwned(ownerID, scanID int64) (*model.ScanSession, error) {
	session, err := s.scanDAO.GetByID(scanID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.OwnerID != ownerID {
		return nil, ErrScanNotFound
	}
	return session, nil
}
