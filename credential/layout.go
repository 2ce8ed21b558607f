package credential

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// Layout on-disk layout generation of the desktop client tree
type Layout string

const (
	LayoutLegacy      Layout = "legacy"    // key_data + 16-hex account folders
	LayoutNewMulti    Layout = "new_multi" // key_datas + user_data* folders
	LayoutUnsupported Layout = "unsupported"
)

// LayoutReport result of probing a tdata tree
type LayoutReport struct {
	Path         string `json:"path"`
	Layout       Layout `json:"layout"`
	AccountCount int    `json:"account_count"`
	HasKeyFile   bool   `json:"has_key_file"`
}

var hexDirPattern = regexp.MustCompile(`^[0-9A-F]{16}$`)

// wellKnownPaths candidate tdata locations per platform, probed in order
func wellKnownPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return []string{
			filepath.Join(appData, "Telegram Desktop", "tdata"),
		}
	case "darwin":
		return []string{
			filepath.Join(home, "Library", "Application Support", "Telegram Desktop", "tdata"),
		}
	default:
		return []string{
			filepath.Join(home, ".local", "share", "TelegramDesktop", "tdata"),
			filepath.Join(home, "snap", "telegram-desktop", "current", ".local", "share", "TelegramDesktop", "tdata"),
			filepath.Join(home, ".var", "app", "org.telegram.desktop", "data", "TelegramDesktop", "tdata"),
		}
	}
}

// Locate probes the platform well-known locations and returns the first
// existing tdata directory
func Locate() (string, error) {
	for _, candidate := range wellKnownPaths() {
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", ErrNoDesktopClient
}

// Probe classifies the tree at path and counts accounts. Probe never reads
// file contents; classification is structural only.
func Probe(path string) (*LayoutReport, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, ErrNoDesktopClient
	}

	report := &LayoutReport{Path: path, Layout: LayoutUnsupported}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, ErrNoDesktopClient
	}

	var hasKeyData, hasKeyDatas bool
	var hexDirs, userDataDirs int
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case name == "key_data" && !entry.IsDir():
			hasKeyData = true
		case name == "key_datas" && !entry.IsDir():
			hasKeyDatas = true
		case entry.IsDir() && hexDirPattern.MatchString(name):
			hexDirs++
		case entry.IsDir() && strings.HasPrefix(name, "user_data"):
			userDataDirs++
		}
	}

	switch {
	case hasKeyDatas && userDataDirs > 0:
		report.Layout = LayoutNewMulti
		report.AccountCount = userDataDirs
		report.HasKeyFile = true
	case hasKeyData && hexDirs > 0:
		report.Layout = LayoutLegacy
		report.AccountCount = hexDirs
		report.HasKeyFile = true
	case !hasKeyData && !hasKeyDatas && hexDirs == 0 && userDataDirs == 0:
		// Tree exists but holds neither key material nor account folders:
		// logged out, whatever else the client left behind.
		return nil, ErrNotAuthenticated
	}

	return report, nil
}
