package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"tele-drive/model"
)

var archiveExtensions = map[string]bool{
	".zip": true, ".rar": true, ".7z": true, ".tar": true, ".gz": true,
	".bz2": true, ".xz": true, ".zst": true, ".tgz": true, ".iso": true,
}

var codeExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".java": true,
	".c": true, ".h": true, ".cpp": true, ".rs": true, ".rb": true,
	".php": true, ".sh": true, ".sql": true, ".html": true, ".css": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".xml": true,
}

var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".txt": true, ".md": true, ".epub": true,
	".odt": true, ".csv": true, ".rtf": true,
}

var archiveMimes = map[string]bool{
	"application/zip":              true,
	"application/x-rar-compressed": true,
	"application/vnd.rar":          true,
	"application/x-7z-compressed":  true,
	"application/x-tar":            true,
	"application/gzip":             true,
	"application/x-bzip2":          true,
	"application/x-xz":             true,
}

var documentMimes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-powerpoint":                                     true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/epub+zip": true,
}

// Classify buckets a media payload by mime prefix first, then by the
// filename extension when the mime type is generic or absent
func Classify(mimeType, filename string) model.FileType {
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	if semi := strings.IndexByte(mime, ';'); semi >= 0 {
		mime = strings.TrimSpace(mime[:semi])
	}

	switch {
	case strings.HasPrefix(mime, "image/"):
		return model.FileTypeImage
	case strings.HasPrefix(mime, "video/"):
		return model.FileTypeVideo
	case strings.HasPrefix(mime, "audio/"):
		return model.FileTypeAudio
	case strings.HasPrefix(mime, "text/"):
		if ext := strings.ToLower(filepath.Ext(filename)); codeExtensions[ext] {
			return model.FileTypeCode
		}
		return model.FileTypeDocument
	case archiveMimes[mime]:
		return model.FileTypeArchive
	case documentMimes[mime]:
		return model.FileTypeDocument
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case archiveExtensions[ext]:
		return model.FileTypeArchive
	case codeExtensions[ext]:
		return model.FileTypeCode
	case documentExtensions[ext]:
		return model.FileTypeDocument
	case ext != "":
		return model.FileTypeOther
	case mime != "":
		return model.FileTypeOther
	}
	return model.FileTypeOther
}

// extensionForMime the extension used when synthesizing filenames
var extensionForMime = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"audio/mpeg":      ".mp3",
	"audio/ogg":       ".ogg",
	"audio/flac":      ".flac",
	"application/pdf": ".pdf",
	"application/zip": ".zip",
	"text/plain":      ".txt",
}

// SynthesizeFilename names a payload that arrived without one
func SynthesizeFilename(messageID int64, mimeType string) string {
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	if semi := strings.IndexByte(mime, ';'); semi >= 0 {
		mime = strings.TrimSpace(mime[:semi])
	}
	ext := extensionForMime[mime]
	if ext == "" {
		if slash := strings.IndexByte(mime, '/'); slash >= 0 && slash+1 < len(mime) {
			ext = "." + mime[slash+1:]
		} else {
			ext = ".bin"
		}
	}
	return fmt.Sprintf("file_%d%s", messageID, ext)
}
