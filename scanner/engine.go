// Package scanner executes channel scans: walk the history, classify media,
// upsert file records and report progress.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"tele-drive/database"
	"tele-drive/event"
	"tele-drive/model"
	"tele-drive/telegram"
	"tele-drive/tool"
)

var (
	// ErrScanAlreadyRunning the owner already has a scan in flight
	ErrScanAlreadyRunning = errors.New("a scan is already running for this owner")

	// ErrScanNotRunning cancel was requested for a scan that is not in flight
	ErrScanNotRunning = errors.New("scan is not running")
)

// Config engine tuning knobs
type Config struct {
	MaxConcurrentScans int
	BatchSize          int
	StallTimeout       time.Duration
	ProgressInterval   time.Duration
	ControlTimeout     time.Duration
	MaxRetries         int
}

// DefaultConfig engine defaults matching the shipped configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrentScans: 4,
		BatchSize:          50,
		StallTimeout:       120 * time.Second,
		ProgressInterval:   250 * time.Millisecond,
		ControlTimeout:     30 * time.Second,
		MaxRetries:         3,
	}
}

type runningScan struct {
	ownerID int64
	cancel  context.CancelFunc
	stalled bool
	mu      sync.Mutex
}

func (r *runningScan) markStalled() {
	r.mu.Lock()
	r.stalled = true
	r.mu.Unlock()
	r.cancel()
}

func (r *runningScan) isStalled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stalled
}

// Engine runs scans against the metadata store and the event bus. One engine
// serves all owners; per-owner admission and a global pool bound concurrency.
type Engine struct {
	db  database.Database
	bus *event.Bus
	cfg Config
	sem *semaphore.Weighted

	mu      sync.Mutex
	running map[int64]*runningScan // scan id -> state
	owners  map[int64]int64        // owner id -> running scan id
}

// NewEngine creates an engine over db and bus
func NewEngine(db database.Database, bus *event.Bus, cfg Config) *Engine {
	if cfg.MaxConcurrentScans <= 0 {
		cfg.MaxConcurrentScans = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.StallTimeout <= 0 {
		cfg.StallTimeout = 120 * time.Second
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 250 * time.Millisecond
	}
	if cfg.ControlTimeout <= 0 {
		cfg.ControlTimeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Engine{
		db:      db,
		bus:     bus,
		cfg:     cfg,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrentScans)),
		running: make(map[int64]*runningScan),
		owners:  make(map[int64]int64),
	}
}

// Start validates the plan, admits the scan and launches it in the
// background. The returned session is in pending state.
func (e *Engine) Start(client telegram.Client, ownerID int64, plan ScanPlan) (*model.ScanSession, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if _, busy := e.owners[ownerID]; busy {
		e.mu.Unlock()
		return nil, ErrScanAlreadyRunning
	}

	// A running row with no in-memory state is a leftover from a previous
	// process; fail it so the owner is not locked out forever.
	stale, err := e.db.GetRunningScanByOwner(ownerID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		e.mu.Unlock()
		return nil, err
	}
	if stale != nil {
		stale.Status = model.ScanStatusFailed
		stale.ErrorMessage = "interrupted by restart"
		now := time.Now().UTC()
		stale.CompletedAt = &now
		if err := e.db.UpdateScanSession(stale); err != nil {
			e.mu.Unlock()
			return nil, err
		}
	}

	session := &model.ScanSession{
		OwnerID:            ownerID,
		ChannelName:        plan.Channel,
		Status:             model.ScanStatusPending,
		Direction:          plan.Direction,
		MaxMessages:        plan.MaxMessages,
		FileTypes:          plan.fileTypesColumn(),
		MinSize:            plan.MinSize,
		MaxSize:            plan.MaxSize,
		ExtensionBlocklist: plan.blocklistColumn(),
	}
	if err := e.db.CreateScanSession(session); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	rs := &runningScan{ownerID: ownerID, cancel: cancel}
	e.running[session.ID] = rs
	e.owners[ownerID] = session.ID
	e.mu.Unlock()

	go e.run(ctx, rs, client, session, plan)
	return session, nil
}

// Cancel requests co-operative cancellation of a running scan
func (e *Engine) Cancel(scanID int64) error {
	e.mu.Lock()
	rs, ok := e.running[scanID]
	e.mu.Unlock()
	if !ok {
		return ErrScanNotRunning
	}
	rs.cancel()
	return nil
}

// IsRunning reports whether the scan is still in flight
func (e *Engine) IsRunning(scanID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.running[scanID]
	return ok
}

func (e *Engine) unregister(scanID int64, rs *runningScan) {
	e.mu.Lock()
	delete(e.running, scanID)
	if e.owners[rs.ownerID] == scanID {
		delete(e.owners, rs.ownerID)
	}
	e.mu.Unlock()
	rs.cancel()
}

// run drives one scan end to end. It owns all session row transitions after
// pending.
func (e *Engine) run(ctx context.Context, rs *runningScan, client telegram.Client, session *model.ScanSession, plan ScanPlan) {
	defer e.unregister(session.ID, rs)

	if err := e.sem.Acquire(ctx, 1); err != nil {
		e.finish(session, model.ScanStatusCancelled, "")
		return
	}
	defer e.sem.Release(1)

	// Zero message budget: nothing to walk.
	if plan.MaxMessages != nil && *plan.MaxMessages == 0 {
		e.finish(session, model.ScanStatusCompleted, "")
		return
	}

	lastProgress := time.Now()
	var progressMu sync.Mutex
	touch := func() {
		progressMu.Lock()
		lastProgress = time.Now()
		progressMu.Unlock()
	}
	sinceProgress := func() time.Duration {
		progressMu.Lock()
		defer progressMu.Unlock()
		return time.Since(lastProgress)
	}

	watchdogStop := make(chan struct{})
	defer close(watchdogStop)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-watchdogStop:
				return
			case <-ticker.C:
				if sinceProgress() > e.cfg.StallTimeout {
					log.Printf("[scanner] scan %d stalled after %s without progress", session.ID, e.cfg.StallTimeout)
					rs.markStalled()
					return
				}
			}
		}
	}()

	err := e.walk(ctx, client, session, plan, touch)
	switch {
	case err == nil:
		e.finish(session, model.ScanStatusCompleted, "")
	case rs.isStalled():
		e.finish(session, model.ScanStatusFailed, "stalled")
	case errors.Is(err, context.Canceled):
		e.finish(session, model.ScanStatusCancelled, "")
	default:
		log.Printf("[scanner] scan %d failed: %v", session.ID, err)
		e.finish(session, model.ScanStatusFailed, err.Error())
	}
}

// cachedEntity redis rendition of a resolved entity. Entity itself hides the
// access hash from JSON, so the cache carries its own shape.
type cachedEntity struct {
	ID         int64  `json:"id"`
	AccessHash int64  `json:"access_hash"`
	Title      string `json:"title"`
	Username   string `json:"username"`
	Kind       string `json:"kind"`
}

// resolveEntity maps the channel handle to an entity, serving repeat scans
// from the cache when available
func (e *Engine) resolveEntity(ctx context.Context, client telegram.Client, channel string, handle telegram.Handle) (*telegram.Entity, error) {
	var cached cachedEntity
	if err := database.GetCache(database.EntityCacheKey(channel), &cached); err == nil && cached.ID != 0 {
		return &telegram.Entity{
			ID:         cached.ID,
			AccessHash: cached.AccessHash,
			Title:      cached.Title,
			Username:   cached.Username,
			Kind:       cached.Kind,
		}, nil
	}

	var entity *telegram.Entity
	err := telegram.WithRetry(ctx, e.cfg.MaxRetries, func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.ControlTimeout)
		defer cancel()
		var callErr error
		entity, callErr = client.ResolveEntity(callCtx, handle)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	database.SetCache(database.EntityCacheKey(channel), &cachedEntity{
		ID:         entity.ID,
		AccessHash: entity.AccessHash,
		Title:      entity.Title,
		Username:   entity.Username,
		Kind:       entity.Kind,
	})
	return entity, nil
}

// walk resolves the channel and iterates its history in batches
func (e *Engine) walk(ctx context.Context, client telegram.Client, session *model.ScanSession, plan ScanPlan, touch func()) error {
	handle, err := telegram.ParseHandle(plan.Channel)
	if err != nil {
		return err
	}

	entity, err := e.resolveEntity(ctx, client, plan.Channel, handle)
	if err != nil {
		return err
	}
	touch()

	session.ChannelID = entity.ID
	if total, err := client.CountMessages(ctx, entity); err == nil && total >= 0 {
		session.TotalMessages = &total
	}

	session.Status = model.ScanStatusRunning
	if err := e.db.UpdateScanSession(session); err != nil {
		return err
	}
	e.publish(session, event.KindStarted)

	var maxMessages int64
	if plan.MaxMessages != nil {
		maxMessages = *plan.MaxMessages
	}

	it, err := client.IterMessages(ctx, entity, telegram.IterOptions{
		Direction:   telegram.Direction(plan.Direction),
		BatchSize:   e.cfg.BatchSize,
		MaxMessages: maxMessages,
	})
	if err != nil {
		return err
	}
	defer it.Close()

	lastEmit := time.Time{}
	lastFound := time.Time{}
	retries := 0
	inBatch := 0
	done := false

	for !done {
		// Batch boundary: the only place cancellation flips state.
		if err := ctx.Err(); err != nil {
			return err
		}

		for inBatch < e.cfg.BatchSize {
			msg, err := it.Next(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					done = true
					break
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return context.Canceled
				}
				if retryAfter, ok := telegram.IsRateLimited(err); ok {
					e.publishPayload(session, event.KindRateLimit, map[string]any{
						"retry_after_seconds": retryAfter.Seconds(),
					})
					touch()
					timer := time.NewTimer(retryAfter)
					select {
					case <-ctx.Done():
						timer.Stop()
						return context.Canceled
					case <-timer.C:
					}
					touch()
					continue
				}
				if telegram.IsTransient(err) && retries < e.cfg.MaxRetries {
					retries++
					continue
				}
				return err
			}
			retries = 0

			session.MessagesScanned++
			if msg.Media != nil {
				record, inserted, err := e.ingest(session, plan, msg)
				if err != nil {
					return err
				}
				if inserted {
					session.FilesFound++
					if time.Since(lastFound) >= e.cfg.ProgressInterval {
						e.publishPayload(session, event.KindFileFound, map[string]any{
							"file_id":     record.ID,
							"filename":    record.Filename,
							"file_type":   string(record.FileType),
							"files_found": session.FilesFound,
						})
						lastFound = time.Now()
					}
				}
			}
			touch()
			inBatch++

			if maxMessages > 0 && session.MessagesScanned >= maxMessages {
				done = true
				break
			}
		}
		inBatch = 0

		if err := e.db.UpdateScanSession(session); err != nil {
			return err
		}
		if time.Since(lastEmit) >= e.cfg.ProgressInterval {
			e.publish(session, event.KindProgress)
			lastEmit = time.Now()
		}
	}

	return e.db.UpdateScanSession(session)
}

// ingest classifies and filters one media message and upserts its record.
// Reports whether a new row was inserted.
func (e *Engine) ingest(session *model.ScanSession, plan ScanPlan, msg *telegram.Message) (*model.FileRecord, bool, error) {
	media := msg.Media

	filename := msg.Filename
	if filename == "" {
		filename = SynthesizeFilename(msg.ID, media.MimeType)
	}
	fileType := Classify(media.MimeType, filename)

	size := media.Size
	if size < 0 {
		size = 0
	}
	if !plan.Admits(fileType, size, filename) {
		return nil, false, nil
	}

	record := &model.FileRecord{
		UniqueID:              tool.NewUniqueID(),
		OwnerID:               session.OwnerID,
		Filename:              filename,
		OriginalFilename:      msg.Filename,
		MimeType:              media.MimeType,
		FileSize:              size,
		FileType:              fileType,
		TelegramChannel:       session.ChannelName,
		TelegramChannelID:     session.ChannelID,
		TelegramMessageID:     msg.ID,
		TelegramFileReference: media.FileReference,
		StorageKind:           model.StorageKindRemote,
	}
	inserted, err := e.db.UpsertFileRecord(record)
	if err != nil {
		return nil, false, fmt.Errorf("upsert file record: %w", err)
	}
	return record, inserted, nil
}

func (e *Engine) finish(session *model.ScanSession, status model.ScanStatus, errMsg string) {
	session.Status = status
	session.ErrorMessage = errMsg
	now := time.Now().UTC()
	session.CompletedAt = &now
	if err := e.db.UpdateScanSession(session); err != nil {
		log.Printf("[scanner] scan %d: persist terminal state: %v", session.ID, err)
	}

	switch status {
	case model.ScanStatusCompleted:
		e.publish(session, event.KindCompleted)
	case model.ScanStatusCancelled:
		e.publish(session, event.KindCancelled)
	default:
		e.publish(session, event.KindFailed)
	}
	log.Printf("[scanner] scan %d finished: status=%s scanned=%d found=%d", session.ID, status, session.MessagesScanned, session.FilesFound)
}

func (e *Engine) publish(session *model.ScanSession, kind event.Kind) {
	payload := map[string]any{
		"messages_scanned": session.MessagesScanned,
		"files_found":      session.FilesFound,
	}
	if session.TotalMessages != nil && *session.TotalMessages > 0 {
		payload["total_messages"] = *session.TotalMessages
		percent := float64(session.MessagesScanned) / float64(*session.TotalMessages) * 100
		if percent > 100 {
			percent = 100
		}
		payload["percent"] = percent
	}
	if session.ErrorMessage != "" {
		payload["error_message"] = session.ErrorMessage
	}
	e.publishPayload(session, kind, payload)
}

func (e *Engine) publishPayload(session *model.ScanSession, kind event.Kind, payload map[string]any) {
	e.bus.Publish(session.ID, kind, payload)
}
