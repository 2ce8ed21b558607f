package telegram

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// HandleKind how a channel reference was written
type HandleKind string

const (
	HandleUsername HandleKind = "username"
	HandleInvite   HandleKind = "invite"
	HandleID       HandleKind = "id"
)

// Handle a normalized channel reference
type Handle struct {
	Kind     HandleKind
	Username string
	Invite   string
	ID       int64
	Raw      string
}

func (h Handle) String() string {
	switch h.Kind {
	case HandleUsername:
		return "@" + h.Username
	case HandleInvite:
		return "+" + h.Invite
	default:
		return strconv.FormatInt(h.ID, 10)
	}
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{3,31}$`)

// ParseHandle normalizes the channel reference forms users paste in:
// @username, bare username, t.me/username, https://t.me/username,
// t.me/+invitehash, t.me/joinchat/hash, and numeric ids.
func ParseHandle(raw string) (Handle, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Handle{}, fmt.Errorf("empty channel reference")
	}
	h := Handle{Raw: raw}

	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	if rest, ok := trimHostPrefix(s); ok {
		s = rest
		s = strings.TrimSuffix(s, "/")
		if hash, ok := strings.CutPrefix(s, "joinchat/"); ok {
			s = "+" + hash
		}
	}

	if invite, ok := strings.CutPrefix(s, "+"); ok {
		if invite == "" {
			return Handle{}, fmt.Errorf("empty invite hash in %q", raw)
		}
		h.Kind = HandleInvite
		h.Invite = invite
		return h, nil
	}

	s = strings.TrimPrefix(s, "@")

	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		h.Kind = HandleID
		h.ID = id
		return h, nil
	}

	if !usernamePattern.MatchString(s) {
		return Handle{}, fmt.Errorf("invalid channel reference %q", raw)
	}
	h.Kind = HandleUsername
	h.Username = strings.ToLower(s)
	return h, nil
}

func trimHostPrefix(s string) (string, bool) {
	for _, host := range []string{"t.me/", "telegram.me/", "telegram.dog/"} {
		if rest, ok := strings.CutPrefix(s, host); ok {
			return rest, true
		}
	}
	return s, false
}
