package share_service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tele-drive/conf"
	"tele-drive/database"
	"tele-drive/model/dao"
	"tele-drive/service/file_service"
	"tele-drive/storage"
	"tele-drive/telegram"
)

func setupServices(t *testing.T) (*ShareService, *file_service.FileService) {
	t.Helper()

	dir := t.TempDir()
	if err := database.InitDatabase(database.DBTypeSQLite, &database.SQLiteConfig{
		Path: filepath.Join(dir, "meta.db"),
	}); err != nil {
		t.Fatalf("init database: %v", err)
	}

	conf.Cfg = &conf.Config{
		Uploader: conf.UploaderConfig{
			DefaultTarget: "local",
			MaxFileSize:   64 << 20,
		},
	}

	store, err := storage.NewLocalStorage(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}

	files := file_service.NewFileService(store, telegram.NewUnavailableClient(""))
	return NewShareService(files), files
}

func uploadFixture(t *testing.T, files *file_service.FileService, ownerID int64, name, body string) int64 {
	t.Helper()
	record, err := files.Upload(context.Background(), ownerID, file_service.UploadRequest{
		Filename: name,
		MimeType: "text/plain",
		Size:     int64(len(body)),
	}, strings.NewReader(body))
	if err != nil {
		t.Fatalf("upload fixture: %v", err)
	}
	return record.ID
}

func TestCreateRequiresExactlyOneTarget(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "hello")
	folderID := int64(1)

	if _, err := shares.Create(1, CreateRequest{CanView: true}); err == nil {
		t.Fatal("want error for neither file nor folder")
	}
	if _, err := shares.Create(1, CreateRequest{FileID: &fileID, FolderID: &folderID, CanView: true}); err == nil {
		t.Fatal("want error for both file and folder")
	}
}

func TestCreateRequiresSomeCapability(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "hello")

	if _, err := shares.Create(1, CreateRequest{FileID: &fileID}); err == nil {
		t.Fatal("want error for a link that can neither view nor download")
	}
}

func TestDownloadFlagSurvivesStorage(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "hello")

	link, err := shares.Create(1, CreateRequest{FileID: &fileID, CanView: true, CanDownload: false})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := dao.NewShareLinkDAO().GetByToken(link.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if !stored.CanView || stored.CanDownload {
		t.Fatalf("stored flags view=%v download=%v, want view-only", stored.CanView, stored.CanDownload)
	}
}

func TestCreateRejectsForeignFile(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "hello")

	if _, err := shares.Create(2, CreateRequest{FileID: &fileID, CanView: true}); !errors.Is(err, file_service.ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}

func TestViewCapExhausts(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "hello")

	maxViews := int64(2)
	link, err := shares.Create(1, CreateRequest{FileID: &fileID, CanView: true, MaxViews: &maxViews})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 2; i++ {
		landing, err := shares.View(link.Token, "")
		if err != nil {
			t.Fatalf("view %d: %v", i+1, err)
		}
		if landing.File == nil || landing.File.ID != fileID {
			t.Fatalf("view %d resolved wrong target: %+v", i+1, landing)
		}
	}

	if _, err := shares.View(link.Token, ""); !errors.Is(err, ErrShareExhausted) {
		t.Fatalf("err = %v, want ErrShareExhausted after cap", err)
	}
}

func TestDownloadCapNeverOverserves(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "payload-bytes")

	maxDownloads := int64(3)
	link, err := shares.Create(1, CreateRequest{
		FileID: &fileID, CanView: true, CanDownload: true, MaxDownloads: &maxDownloads,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	served := 0
	for i := 0; i < 5; i++ {
		var sink bytes.Buffer
		_, err := shares.Download(context.Background(), link.Token, "", &sink)
		if err == nil {
			served++
			if sink.String() != "payload-bytes" {
				t.Fatalf("download %d payload = %q", i+1, sink.String())
			}
			continue
		}
		if !errors.Is(err, ErrShareExhausted) {
			t.Fatalf("download %d: %v", i+1, err)
		}
	}
	if served != 3 {
		t.Fatalf("served = %d, want exactly 3", served)
	}
}

func TestDownloadCapDeniesLateRacer(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "hello")

	maxDownloads := int64(1)
	link, err := shares.Create(1, CreateRequest{
		FileID: &fileID, CanView: true, CanDownload: true, MaxDownloads: &maxDownloads,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Two requests that both read downloads=0: only the first increment may
	// land, the second has to lose in the database.
	shareDAO := dao.NewShareLinkDAO()
	if counted, err := shareDAO.IncrementDownloads(link.ID); err != nil || !counted {
		t.Fatalf("first increment = (%v, %v), want counted", counted, err)
	}
	if counted, err := shareDAO.IncrementDownloads(link.ID); err != nil || counted {
		t.Fatalf("second increment = (%v, %v), want denied", counted, err)
	}

	stored, err := shareDAO.GetByToken(link.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if stored.Downloads != 1 {
		t.Fatalf("downloads = %d, want 1", stored.Downloads)
	}
}

func TestViewOnlyLinkRefusesDownload(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "hello")

	link, err := shares.Create(1, CreateRequest{FileID: &fileID, CanView: true, CanDownload: false})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var sink bytes.Buffer
	if _, err := shares.Download(context.Background(), link.Token, "", &sink); !errors.Is(err, ErrShareExhausted) {
		t.Fatalf("err = %v, want ErrShareExhausted", err)
	}
	if sink.Len() != 0 {
		t.Fatalf("refused download wrote %d bytes", sink.Len())
	}
}

func TestPasswordFlow(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "hello")

	link, err := shares.Create(1, CreateRequest{FileID: &fileID, CanView: true, Password: "secret"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// No password: the landing asks for one, reveals nothing and counts no view.
	landing, err := shares.View(link.Token, "")
	if err != nil {
		t.Fatalf("view without password: %v", err)
	}
	if !landing.RequiresPassword || landing.File != nil {
		t.Fatalf("landing = %+v, want password prompt with no target", landing)
	}

	if _, err := shares.View(link.Token, "wrong"); !errors.Is(err, ErrSharePassword) {
		t.Fatalf("err = %v, want ErrSharePassword", err)
	}
	if err := shares.VerifyPassword(link.Token, "secret"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}

	landing, err = shares.View(link.Token, "secret")
	if err != nil {
		t.Fatalf("view with password: %v", err)
	}
	if landing.File == nil || landing.File.ID != fileID {
		t.Fatalf("landing did not resolve the file: %+v", landing)
	}

	// Only the successful resolution counted.
	stored, err := dao.NewShareLinkDAO().GetByToken(link.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if stored.Views != 1 {
		t.Fatalf("views = %d, want 1", stored.Views)
	}
}

func TestExpiredLinkUnusable(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "hello")

	link, err := shares.Create(1, CreateRequest{FileID: &fileID, CanView: true, ExpiresIn: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	past := time.Now().UTC().Add(-time.Minute)
	link.ExpiresAt = &past
	if err := dao.NewShareLinkDAO().Update(link); err != nil {
		t.Fatalf("expire link: %v", err)
	}

	if _, err := shares.View(link.Token, ""); !errors.Is(err, ErrShareExhausted) {
		t.Fatalf("err = %v, want ErrShareExhausted", err)
	}
}

func TestRevokeDeactivates(t *testing.T) {
	shares, files := setupServices(t)
	fileID := uploadFixture(t, files, 1, "a.txt", "hello")

	link, err := shares.Create(1, CreateRequest{FileID: &fileID, CanView: true, CanDownload: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := shares.Revoke(2, link.Token); !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("foreign revoke err = %v, want ErrShareNotFound", err)
	}
	if err := shares.Revoke(1, link.Token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	if _, err := shares.View(link.Token, ""); !errors.Is(err, ErrShareExhausted) {
		t.Fatalf("err = %v, want ErrShareExhausted after revoke", err)
	}
}

func TestUnknownToken(t *testing.T) {
	shares, _ := setupServices(t)
	if _, err := shares.View("no-such-token", ""); !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("err = %v, want ErrShareNotFound", err)
	}
}
