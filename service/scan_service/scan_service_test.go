package scan_service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tele-drive/database"
	"tele-drive/event"
	"tele-drive/model"
	"tele-drive/scanner"
	"tele-drive/telegram"
)

// parkedClient blocks inside entity resolution until released, so tests can
// observe the scan while the engine is mid-call.
type parkedClient struct {
	telegram.Client
	reached chan struct{}
	release chan struct{}
	once    sync.Once
}

func newParkedClient() *parkedClient {
	return &parkedClient{
		Client:  telegram.NewUnavailableClient(""),
		reached: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (c *parkedClient) ResolveEntity(ctx context.Context, handle telegram.Handle) (*telegram.Entity, error) {
	c.once.Do(func() { close(c.reached) })
	<-c.release
	return nil, ctx.Err()
}

func setupScanService(t *testing.T, client telegram.Client) *ScanService {
	t.Helper()
	if err := database.InitDatabase(database.DBTypeSQLite, &database.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "meta.db"),
	}); err != nil {
		t.Fatalf("init database: %v", err)
	}
	engine := scanner.NewEngine(database.DB, event.NewBus(), scanner.DefaultConfig())
	return NewScanService(engine, event.NewBus(), client)
}

func waitTerminal(t *testing.T, svc *ScanService, ownerID, scanID int64) *model.ScanSession {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		session, err := svc.GetScan(ownerID, scanID)
		if err != nil {
			t.Fatalf("GetScan: %v", err)
		}
		if session.Status.Terminal() {
			return session
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("scan did not reach a terminal state")
	return nil
}

func TestCancelReportsStoredStatus(t *testing.T) {
	client := newParkedClient()
	svc := setupScanService(t, client)

	session, err := svc.StartScan(1, scanner.ScanPlan{Channel: "@demo", FileTypes: model.AllFileTypes})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}

	select {
	case <-client.reached:
	case <-time.After(3 * time.Second):
		t.Fatal("scan never reached the facade")
	}

	status, err := svc.CancelScan(1, session.ID)
	if err != nil {
		t.Fatalf("CancelScan: %v", err)
	}
	// The engine is still parked inside the facade call, so the request is
	// only acknowledged: the stored status has not transitioned yet.
	if status != model.ScanStatusPending {
		t.Fatalf("status = %s, want pending until the engine observes the request", status)
	}

	close(client.release)
	final := waitTerminal(t, svc, 1, session.ID)
	if final.Status != model.ScanStatusCancelled {
		t.Fatalf("final status = %s, want cancelled", final.Status)
	}

	// Cancelling again after the terminal transition reports it as-is.
	status, err = svc.CancelScan(1, session.ID)
	if err != nil {
		t.Fatalf("second CancelScan: %v", err)
	}
	if status != model.ScanStatusCancelled {
		t.Fatalf("second cancel status = %s, want cancelled", status)
	}
}

func TestCancelScanOwnership(t *testing.T) {
	client := newParkedClient()
	svc := setupScanService(t, client)

	session, err := svc.StartScan(1, scanner.ScanPlan{Channel: "@demo", FileTypes: model.AllFileTypes})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	<-client.reached

	if _, err := svc.CancelScan(2, session.ID); !errors.Is(err, ErrScanNotFound) {
		t.Fatalf("foreign cancel err = %v, want ErrScanNotFound", err)
	}
	if _, err := svc.CancelScan(1, 99999); !errors.Is(err, ErrScanNotFound) {
		t.Fatalf("unknown cancel err = %v, want ErrScanNotFound", err)
	}

	if _, err := svc.CancelScan(1, session.ID); err != nil {
		t.Fatalf("CancelScan: %v", err)
	}
	close(client.release)
	waitTerminal(t, svc, 1, session.ID)
}
