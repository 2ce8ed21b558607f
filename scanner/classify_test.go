package scanner

import (
	"testing"

	"tele-drive/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		mime     string
		filename string
		want     model.FileType
	}{
		{"image/jpeg", "photo.jpg", model.FileTypeImage},
		{"image/webp", "", model.FileTypeImage},
		{"video/mp4", "clip.mp4", model.FileTypeVideo},
		{"audio/mpeg", "song.mp3", model.FileTypeAudio},
		{"application/pdf", "report.pdf", model.FileTypeDocument},
		{"application/zip", "bundle.zip", model.FileTypeArchive},
		{"text/plain", "readme.txt", model.FileTypeDocument},
		{"text/plain", "main.go", model.FileTypeCode},
		{"text/x-python; charset=utf-8", "script.py", model.FileTypeCode},
		{"application/octet-stream", "dump.tar", model.FileTypeArchive},
		{"application/octet-stream", "query.sql", model.FileTypeCode},
		{"application/octet-stream", "slides.pptx", model.FileTypeDocument},
		{"application/octet-stream", "blob.xyz", model.FileTypeOther},
		{"application/octet-stream", "", model.FileTypeOther},
		{"", "notes.md", model.FileTypeDocument},
		{"", "", model.FileTypeOther},
		{"APPLICATION/PDF", "x.pdf", model.FileTypeDocument},
	}

	for _, tc := range cases {
		t.Run(tc.mime+"/"+tc.filename, func(t *testing.T) {
			if got := Classify(tc.mime, tc.filename); got != tc.want {
				t.Fatalf("Classify(%q, %q) = %s, want %s", tc.mime, tc.filename, got, tc.want)
			}
		})
	}
}

func TestSynthesizeFilename(t *testing.T) {
	cases := []struct {
		id   int64
		mime string
		want string
	}{
		{100, "image/jpeg", "file_100.jpg"},
		{101, "video/mp4", "file_101.mp4"},
		{102, "application/pdf", "file_102.pdf"},
		{103, "application/x-unknown-thing", "file_103.x-unknown-thing"},
		{104, "", "file_104.bin"},
		{105, "image/png; name=x", "file_105.png"},
	}
	for _, tc := range cases {
		if got := SynthesizeFilename(tc.id, tc.mime); got != tc.want {
			t.Fatalf("SynthesizeFilename(%d, %q) = %s, want %s", tc.id, tc.mime, got, tc.want)
		}
	}
}
