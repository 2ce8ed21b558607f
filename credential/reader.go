package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// dbiMtpAuthorization block id carrying user id, primary DC and auth keys
const dbiMtpAuthorization = 75

// Read extracts the first logged-in account from the desktop client tree at
// path. The tree is never written to. Decryption is attempted for any tree
// that carries a key file; UnsupportedLayoutError is returned only when no
// account blob decrypts.
func Read(path string) (*AccountCredential, error) {
	report, err := Probe(path)
	if err != nil {
		return nil, err
	}
	keyBase := keyFileBase(path)
	if keyBase == "" {
		return nil, &UnsupportedLayoutError{Report: report}
	}

	keyTDF, err := openTDF(path, keyBase)
	if err != nil {
		return nil, fmt.Errorf("%w: key file unreadable", ErrCredentialCorrupt)
	}

	salt, keyEncrypted, infoEncrypted, err := parseKeyFile(keyTDF)
	if err != nil {
		return nil, err
	}

	localKey, err := unlockLocalKey(salt, keyEncrypted, nil)
	if err != nil {
		return nil, err
	}

	indexes, err := accountIndexes(infoEncrypted, localKey)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, index := range indexes {
		cred, err := readAccount(path, index, localKey)
		if err != nil {
			lastErr = err
			continue
		}
		if err := cred.Validate(); err != nil {
			lastErr = err
			continue
		}
		return cred, nil
	}

	if lastErr != nil && errors.Is(lastErr, ErrCredentialCorrupt) {
		return nil, lastErr
	}
	return nil, &UnsupportedLayoutError{Report: report}
}

// keyFileBase picks the key container name present in the tree
func keyFileBase(path string) string {
	for _, base := range []string{"key_datas", "key_data"} {
		for _, suffix := range []string{"", "s", "0", "1"} {
			if info, err := os.Stat(filepath.Join(path, base+suffix)); err == nil && !info.IsDir() {
				return base
			}
		}
	}
	return ""
}

// parseKeyFile splits the key container stream into its three fields
func parseKeyFile(tdf *tdfFile) (salt, keyEncrypted, infoEncrypted []byte, err error) {
	r := newStreamReader(tdf.Data)
	if salt, err = r.readBytes(); err != nil {
		return nil, nil, nil, err
	}
	if keyEncrypted, err = r.readBytes(); err != nil {
		return nil, nil, nil, err
	}
	if infoEncrypted, err = r.readBytes(); err != nil {
		return nil, nil, nil, err
	}
	if len(salt) == 0 || len(keyEncrypted) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: key file missing fields", ErrCredentialCorrupt)
	}
	return salt, keyEncrypted, infoEncrypted, nil
}

// unlockLocalKey decrypts the 256-byte local key with the passcode-derived
// key, falling back to the legacy derivation for old trees
func unlockLocalKey(salt, keyEncrypted, passcode []byte) ([]byte, error) {
	passKey := createLocalKey(passcode, salt)
	plain, err := decryptLocal(keyEncrypted, passKey)
	if err != nil {
		legacyKey := createLegacyLocalKey(passcode, salt)
		if plain, err = decryptLocal(keyEncrypted, legacyKey); err != nil {
			return nil, err
		}
	}

	r := newStreamReader(plain)
	localKey, err := r.readRaw(AuthKeySize)
	if err != nil {
		return nil, err
	}
	return localKey, nil
}

// accountIndexes decodes the account index list from the key file info blob.
// An absent blob means a single default account.
func accountIndexes(infoEncrypted, localKey []byte) ([]int, error) {
	if len(infoEncrypted) == 0 {
		return []int{0}, nil
	}
	plain, err := decryptLocal(infoEncrypted, localKey)
	if err != nil {
		return nil, err
	}

	r := newStreamReader(plain)
	count, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	if count < 1 || count > 64 {
		return nil, fmt.Errorf("%w: implausible account count %d", ErrCredentialCorrupt, count)
	}
	indexes := make([]int, 0, count)
	for i := int32(0); i < count; i++ {
		idx, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, int(idx))
	}
	return indexes, nil
}

// composeDataName maps an account index to its data name: "data" for the
// first account, "data#N" for the rest
func composeDataName(index int) string {
	if index == 0 {
		return "data"
	}
	return fmt.Sprintf("data#%d", index+1)
}

// readAccount opens and decrypts one account data container and extracts its
// MTProto authorization block
func readAccount(path string, index int, localKey []byte) (*AccountCredential, error) {
	base := filePart(composeDataName(index))

	dirs := []string{path}
	if index == 0 {
		dirs = append(dirs, filepath.Join(path, "user_data"))
	} else {
		dirs = append(dirs, filepath.Join(path, fmt.Sprintf("user_data#%d", index+1)))
	}

	var tdf *tdfFile
	var err error
	for _, dir := range dirs {
		if tdf, err = openTDF(dir, base); err == nil {
			break
		}
	}
	if tdf == nil {
		return nil, fmt.Errorf("account data file %s not found", base)
	}

	outer := newStreamReader(tdf.Data)
	encrypted, err := outer.readBytes()
	if err != nil {
		return nil, err
	}
	plain, err := decryptLocal(encrypted, localKey)
	if err != nil {
		return nil, err
	}

	return parseAuthorizationBlocks(plain)
}

// parseAuthorizationBlocks walks the decrypted account stream looking for the
// MTProto authorization block. Unknown blocks are length-prefixed and skipped.
func parseAuthorizationBlocks(plain []byte) (*AccountCredential, error) {
	r := newStreamReader(plain)
	for r.remaining() >= 4 {
		blockID, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		body, err := r.readBytes()
		if err != nil {
			return nil, err
		}
		if blockID == dbiMtpAuthorization {
			return parseMtpAuthorization(body)
		}
	}
	return nil, fmt.Errorf("%w: no authorization block", ErrCredentialCorrupt)
}

// parseMtpAuthorization decodes user id, primary DC and the per-DC key set.
// Legacy serializations carry 32-bit ids; -1 sentinels signal the wide form.
func parseMtpAuthorization(body []byte) (*AccountCredential, error) {
	r := newStreamReader(body)

	legacyUserID, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	legacyMainDC, err := r.readInt32()
	if err != nil {
		return nil, err
	}

	var userID int64
	var mainDC int
	if legacyUserID == -1 && legacyMainDC == -1 {
		wideUser, err := r.readInt64()
		if err != nil {
			return nil, err
		}
		wideDC, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		userID, mainDC = wideUser, int(wideDC)
	} else {
		userID, mainDC = int64(legacyUserID), int(legacyMainDC)
	}

	keysCount, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	if keysCount < 1 || keysCount > 16 {
		return nil, fmt.Errorf("%w: implausible key count %d", ErrCredentialCorrupt, keysCount)
	}

	keys := make(map[int][]byte, keysCount)
	for i := int32(0); i < keysCount; i++ {
		dcID, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		key, err := r.readRaw(AuthKeySize)
		if err != nil {
			return nil, err
		}
		keys[int(dcID)] = key
	}

	return &AccountCredential{UserID: userID, PrimaryDCID: mainDC, AuthKeys: keys}, nil
}
