package file_service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"tele-drive/conf"
	"tele-drive/database"
	"tele-drive/model"
	"tele-drive/storage"
	"tele-drive/telegram"
)

func setupService(t *testing.T, client telegram.Client) (*FileService, storage.Storage) {
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
			MaxFileSize:   1 << 20,
		},
	}

	store, err := storage.NewLocalStorage(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}
	if client == nil {
		client = telegram.NewUnavailableClient("")
	}
	return NewFileService(store, client), store
}

func TestUploadLocalRoundTrip(t *testing.T) {
	svc, store := setupService(t, nil)
	body := "drive payload contents"

	record, err := svc.Upload(context.Background(), 1, UploadRequest{
		Filename: "notes.txt",
		MimeType: "text/plain",
		Size:     int64(len(body)),
	}, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if record.StorageKind != model.StorageKindLocal {
		t.Fatalf("storage kind = %s, want local", record.StorageKind)
	}
	if record.FileType != model.FileTypeDocument {
		t.Fatalf("file type = %s, want document", record.FileType)
	}
	if record.FileSize != int64(len(body)) {
		t.Fatalf("size = %d, want %d", record.FileSize, len(body))
	}
	sum := sha256.Sum256([]byte(body))
	if record.ContentHash != hex.EncodeToString(sum[:]) {
		t.Fatalf("content hash mismatch: %s", record.ContentHash)
	}
	if !store.Exists(record.LocalPath) {
		t.Fatalf("payload missing at %s", record.LocalPath)
	}

	var sink bytes.Buffer
	downloaded, err := svc.Download(context.Background(), 1, record.ID, &sink)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if sink.String() != body {
		t.Fatalf("downloaded %q, want %q", sink.String(), body)
	}
	if downloaded.ID != record.ID {
		t.Fatalf("downloaded record id = %d, want %d", downloaded.ID, record.ID)
	}

	// Download bumps the counter.
	after, err := svc.Get(1, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if after.DownloadCount != 1 {
		t.Fatalf("download count = %d, want 1", after.DownloadCount)
	}
}

func TestUploadRejectsOversize(t *testing.T) {
	svc, _ := setupService(t, nil)

	_, err := svc.Upload(context.Background(), 1, UploadRequest{
		Filename: "huge.bin",
		Size:     2 << 20,
	}, strings.NewReader("x"))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestDeleteRemovesLocalPayload(t *testing.T) {
	svc, store := setupService(t, nil)

	record, err := svc.Upload(context.Background(), 1, UploadRequest{
		Filename: "gone.txt",
		Size:     4,
	}, strings.NewReader("gone"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(1, record.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := svc.Get(1, record.ID); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrFileNotFound", err)
	}
	if store.Exists(record.LocalPath) {
		t.Fatalf("payload still present at %s", record.LocalPath)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	svc, _ := setupService(t, nil)

	record, err := svc.Upload(context.Background(), 1, UploadRequest{
		Filename: "mine.txt",
		Size:     4,
	}, strings.NewReader("mine"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := svc.Get(2, record.ID); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("foreign Get err = %v, want ErrFileNotFound", err)
	}
	if err := svc.Delete(2, record.ID); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("foreign Delete err = %v, want ErrFileNotFound", err)
	}
}

// mediaClient serves DownloadMedia from a byte slice, everything else is the
// unavailable client
type mediaClient struct {
	telegram.UnavailableClient
	payload []byte
}

func (c *mediaClient) DownloadMedia(ctx context.Context, desc *telegram.MediaDescriptor, sink io.Writer) (int64, error) {
	n, err := sink.Write(c.payload)
	return int64(n), err
}

func TestStreamPayloadRemote(t *testing.T) {
	client := &mediaClient{payload: []byte("remote bytes")}
	svc, _ := setupService(t, client)

	record := &model.FileRecord{
		UniqueID:          "u1",
		OwnerID:           1,
		Filename:          "remote.bin",
		TelegramChannelID: 77,
		TelegramMessageID: 12,
		StorageKind:       model.StorageKindRemote,
	}

	var sink bytes.Buffer
	if err := svc.StreamPayload(context.Background(), record, &sink); err != nil {
		t.Fatalf("StreamPayload: %v", err)
	}
	if sink.String() != "remote bytes" {
		t.Fatalf("streamed %q", sink.String())
	}
}

func TestStreamPayloadRemoteWithoutOrigin(t *testing.T) {
	svc, _ := setupService(t, nil)

	record := &model.FileRecord{StorageKind: model.StorageKindRemote}
	if err := svc.StreamPayload(context.Background(), record, io.Discard); !errors.Is(err, ErrPayloadUnavailable) {
		t.Fatalf("err = %v, want ErrPayloadUnavailable", err)
	}
}

func TestFolderCycleRejected(t *testing.T) {
	svc, _ := setupService(t, nil)

	root, err := svc.CreateFolder(1, "root", nil)
	if err != nil {
		t.Fatalf("CreateFolder root: %v", err)
	}
	child, err := svc.CreateFolder(1, "child", &root.ID)
	if err != nil {
		t.Fatalf("CreateFolder child: %v", err)
	}

	if _, err := svc.MoveFolder(1, root.ID, &child.ID); !errors.Is(err, ErrFolderCycle) {
		t.Fatalf("err = %v, want ErrFolderCycle", err)
	}
	if _, err := svc.MoveFolder(1, root.ID, &root.ID); !errors.Is(err, ErrFolderCycle) {
		t.Fatalf("self move err = %v, want ErrFolderCycle", err)
	}
}

func TestDeleteFolderTree(t *testing.T) {
	svc, _ := setupService(t, nil)

	root, err := svc.CreateFolder(1, "root", nil)
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	sub, err := svc.CreateFolder(1, "sub", &root.ID)
	if err != nil {
		t.Fatalf("CreateFolder sub: %v", err)
	}

	record, err := svc.Upload(context.Background(), 1, UploadRequest{
		Filename: "nested.txt",
		Size:     6,
		FolderID: &sub.ID,
	}, strings.NewReader("nested"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.DeleteFolder(1, root.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}

	if _, err := svc.GetFolder(1, sub.ID); !errors.Is(err, ErrFolderNotFound) {
		t.Fatalf("sub folder err = %v, want ErrFolderNotFound", err)
	}
	if _, err := svc.Get(1, record.ID); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("nested file err = %v, want ErrFileNotFound", err)
	}
}
