package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"tele-drive/model"
	"tele-drive/telegram"
)

// ScanPlan parameters of one channel scan
type ScanPlan struct {
	Channel            string              `json:"channel"`
	Direction          model.ScanDirection `json:"direction"`
	MaxMessages        *int64              `json:"max_messages"` // nil = unbounded, 0 = scan nothing
	FileTypes          []model.FileType    `json:"file_types"`   // at least one kind required
	MinSize            int64               `json:"min_size"`
	MaxSize            int64               `json:"max_size"` // 0 = unbounded
	ExtensionBlocklist []string            `json:"extension_blocklist"`
}

// Validate normalizes and checks the plan in place
func (p *ScanPlan) Validate() error {
	if _, err := telegram.ParseHandle(p.Channel); err != nil {
		return err
	}
	if p.Direction == "" {
		p.Direction = model.DirectionNewestFirst
	}
	if p.Direction != model.DirectionNewestFirst && p.Direction != model.DirectionOldestFirst {
		return fmt.Errorf("invalid direction %q", p.Direction)
	}
	if p.MaxMessages != nil && *p.MaxMessages < 0 {
		return fmt.Errorf("max_messages must not be negative")
	}
	if p.MinSize < 0 {
		return fmt.Errorf("min_size must not be negative")
	}
	if p.MaxSize < 0 {
		return fmt.Errorf("max_size must not be negative")
	}
	if p.MaxSize > 0 && p.MinSize > p.MaxSize {
		return fmt.Errorf("min_size %d exceeds max_size %d", p.MinSize, p.MaxSize)
	}
	if len(p.FileTypes) == 0 {
		return fmt.Errorf("file_types must name at least one kind")
	}
	for _, ft := range p.FileTypes {
		if !model.IsValidFileType(string(ft)) {
			return fmt.Errorf("unknown file type %q", ft)
		}
	}
	for i, ext := range p.ExtensionBlocklist {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		p.ExtensionBlocklist[i] = ext
	}
	return nil
}

// wantsType reports whether the plan admits the classified kind
func (p *ScanPlan) wantsType(ft model.FileType) bool {
	for _, want := range p.FileTypes {
		if want == ft {
			return true
		}
	}
	return false
}

// Admits applies the type, size and extension filters. Unknown sizes are
// treated as 0.
func (p *ScanPlan) Admits(ft model.FileType, size int64, filename string) bool {
	if size < 0 {
		size = 0
	}
	if !p.wantsType(ft) {
		return false
	}
	if size < p.MinSize {
		return false
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		return false
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, blocked := range p.ExtensionBlocklist {
		if blocked != "" && ext == blocked {
			return false
		}
	}
	return true
}

// fileTypesColumn serializes the enabled kinds for the scan session row
func (p *ScanPlan) fileTypesColumn() string {
	if len(p.FileTypes) == 0 {
		return ""
	}
	parts := make([]string, len(p.FileTypes))
	for i, ft := range p.FileTypes {
		parts[i] = string(ft)
	}
	return strings.Join(parts, ",")
}

// blocklistColumn serializes the extension blocklist for the scan session row
func (p *ScanPlan) blocklistColumn() string {
	return strings.Join(p.ExtensionBlocklist, ",")
}
