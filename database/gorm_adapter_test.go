package database

import (
	"path/filepath"
	"testing"

	"tele-drive/model"
)

func openTestStore(t *testing.T) *GormDatabase {
	t.Helper()
	db, err := NewSQLiteDatabase(&SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.(*GormDatabase)
}

func originRecord(uniqueID string, channelID, messageID int64, filename string) *model.FileRecord {
	return &model.FileRecord{
		UniqueID:          uniqueID,
		OwnerID:           1,
		Filename:          filename,
		MimeType:          "application/pdf",
		FileSize:          100,
		FileType:          model.FileTypeDocument,
		TelegramChannelID: channelID,
		TelegramMessageID: messageID,
		StorageKind:       model.StorageKindRemote,
	}
}

func TestOriginKeyUniqueInDatabase(t *testing.T) {
	g := openTestStore(t)

	inserted, err := g.UpsertFileRecord(originRecord("u1", 5, 10, "a.pdf"))
	if err != nil || !inserted {
		t.Fatalf("first upsert = (%v, %v), want insert", inserted, err)
	}

	// A writer that raced past the pre-insert lookup hits the constraint
	// instead of landing a duplicate row.
	err = g.GetGormDB().Create(originRecord("u2", 5, 10, "b.pdf")).Error
	if err == nil {
		t.Fatal("duplicate origin insert succeeded")
	}
	if !isUniqueViolation(err) {
		t.Fatalf("err = %v, want a unique violation", err)
	}
}

func TestUnknownOriginsDoNotCollide(t *testing.T) {
	g := openTestStore(t)

	for _, uid := range []string{"u1", "u2"} {
		if err := g.GetGormDB().Create(originRecord(uid, 0, 0, uid+".pdf")).Error; err != nil {
			t.Fatalf("insert %s: %v", uid, err)
		}
	}
}

func TestUpsertDegradesRaceToUpdate(t *testing.T) {
	g := openTestStore(t)

	if _, err := g.UpsertFileRecord(originRecord("u1", 5, 10, "a.pdf")); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	inserted, err := g.UpsertFileRecord(originRecord("u2", 5, 10, "renamed.pdf"))
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if inserted {
		t.Fatal("second upsert reported an insert, want update")
	}

	stored, err := g.GetFileRecordByOrigin(1, 5, 10)
	if err != nil {
		t.Fatalf("get by origin: %v", err)
	}
	if stored.Filename != "renamed.pdf" {
		t.Fatalf("filename = %s, want renamed.pdf", stored.Filename)
	}
	if got := countOwnerRecords(t, g); got != 1 {
		t.Fatalf("record count = %d, want 1", got)
	}
}

func countOwnerRecords(t *testing.T, g *GormDatabase) int {
	t.Helper()
	files, _, _, err := g.ListFileRecordsWithCursor(FileFilter{OwnerID: 1}, 0, 100)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	return len(files)
}
