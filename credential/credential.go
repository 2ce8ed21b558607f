package credential

import "fmt"

// AuthKeySize MTProto auth keys are 256 bytes
const AuthKeySize = 256

// AccountCredential canonical account material extracted from the desktop
// client. Created by Read, consumed once by the session materializer.
type AccountCredential struct {
	UserID      int64
	PrimaryDCID int
	AuthKeys    map[int][]byte // dc_id -> 256-byte auth key
}

// Validate checks the credential invariant: the primary DC key must be present
func (c *AccountCredential) Validate() error {
	if c.PrimaryDCID < 1 || c.PrimaryDCID > 5 {
		return fmt.Errorf("primary dc id %d out of range", c.PrimaryDCID)
	}
	key, ok := c.AuthKeys[c.PrimaryDCID]
	if !ok {
		return fmt.Errorf("no auth key for primary dc %d", c.PrimaryDCID)
	}
	if len(key) != AuthKeySize {
		return fmt.Errorf("auth key for dc %d has %d bytes, want %d", c.PrimaryDCID, len(key), AuthKeySize)
	}
	return nil
}

// PrimaryKey returns the auth key bound to the primary DC
func (c *AccountCredential) PrimaryKey() []byte {
	return c.AuthKeys[c.PrimaryDCID]
}
