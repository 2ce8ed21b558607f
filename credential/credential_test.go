package credential

import (
	"bytes"
	"crypto/aes"
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeBEBytes(buf *bytes.Buffer, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf.Write(lenBuf[:])
	buf.Write(data)
}

func writeBEInt32(buf *bytes.Buffer, v int32) {
	binary.Write(buf, binary.BigEndian, v)
}

func writeTDFFile(t *testing.T, path string, version int32, data []byte) {
	t.Helper()
	var out bytes.Buffer
	out.Write(tdfMagic)
	binary.Write(&out, binary.LittleEndian, version)
	out.Write(data)

	h := md5.New()
	h.Write(data)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	h.Write(lenBuf[:])
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(version))
	h.Write(lenBuf[:])
	h.Write(tdfMagic)
	out.Write(h.Sum(nil))

	if err := os.WriteFile(path, out.Bytes(), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func aesIGEEncrypt(t *testing.T, plaintext, key, iv []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	ciphertext := make([]byte, len(plaintext))
	iv1 := append([]byte{}, iv[:aes.BlockSize]...)
	iv2 := append([]byte{}, iv[aes.BlockSize:2*aes.BlockSize]...)
	var tmp [aes.BlockSize]byte
	for i := 0; i < len(plaintext); i += aes.BlockSize {
		in := plaintext[i : i+aes.BlockSize]
		out := ciphertext[i : i+aes.BlockSize]
		for j := 0; j < aes.BlockSize; j++ {
			tmp[j] = in[j] ^ iv1[j]
		}
		block.Encrypt(out, tmp[:])
		for j := 0; j < aes.BlockSize; j++ {
			out[j] ^= iv2[j]
		}
		copy(iv1, out)
		copy(iv2, in)
	}
	return ciphertext
}

// encryptLocal inverse of decryptLocal, used to build fixtures
func encryptLocal(t *testing.T, data, authKey []byte) []byte {
	t.Helper()
	full := make([]byte, 4, 4+len(data)+aes.BlockSize)
	binary.LittleEndian.PutUint32(full, uint32(4+len(data)))
	full = append(full, data...)
	for len(full)%aes.BlockSize != 0 {
		full = append(full, 0x04)
	}

	sum := sha1.Sum(full)
	msgKey := sum[:16]
	aesKey, aesIV := prepareAESOldMTP(authKey, msgKey)
	ciphertext := aesIGEEncrypt(t, full, aesKey, aesIV)
	return append(append([]byte{}, msgKey...), ciphertext...)
}

func testLocalKey() []byte {
	key := make([]byte, AuthKeySize)
	for i := range key {
		key[i] = byte(i * 7)
	}
	return key
}

func testAuthKey(seed byte) []byte {
	key := make([]byte, AuthKeySize)
	for i := range key {
		key[i] = byte(i) ^ seed
	}
	return key
}

// buildTree writes a complete new-layout fixture and returns its root
func buildTree(t *testing.T, userID int64, mainDC int) string {
	t.Helper()
	root := t.TempDir()
	salt := []byte("0123456789abcdef0123456789abcdef")
	localKey := testLocalKey()

	// Key container: salt, encrypted local key, encrypted account index list.
	passKey := createLocalKey(nil, salt)
	keyEncrypted := encryptLocal(t, localKey, passKey)

	var info bytes.Buffer
	writeBEInt32(&info, 1)
	writeBEInt32(&info, 0)
	infoEncrypted := encryptLocal(t, info.Bytes(), localKey)

	var keyStream bytes.Buffer
	writeBEBytes(&keyStream, salt)
	writeBEBytes(&keyStream, keyEncrypted)
	writeBEBytes(&keyStream, infoEncrypted)
	writeTDFFile(t, filepath.Join(root, "key_datas"), 1, keyStream.Bytes())

	if err := os.Mkdir(filepath.Join(root, "user_data"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// Authorization block: ids, key count, per-DC keys.
	var auth bytes.Buffer
	writeBEInt32(&auth, -1)
	writeBEInt32(&auth, -1)
	binary.Write(&auth, binary.BigEndian, userID)
	writeBEInt32(&auth, int32(mainDC))
	writeBEInt32(&auth, 2)
	writeBEInt32(&auth, int32(mainDC))
	auth.Write(testAuthKey(0xA5))
	writeBEInt32(&auth, 4)
	auth.Write(testAuthKey(0x3C))

	var blocks bytes.Buffer
	writeBEInt32(&blocks, dbiMtpAuthorization)
	writeBEBytes(&blocks, auth.Bytes())

	var account bytes.Buffer
	writeBEBytes(&account, encryptLocal(t, blocks.Bytes(), localKey))
	writeTDFFile(t, filepath.Join(root, filePart("data")+"s"), 1, account.Bytes())

	return root
}

func TestFilePart(t *testing.T) {
	if got := filePart("data"); got != "D877F783D5D3EF8C" {
		t.Fatalf("filePart(data) = %s, want D877F783D5D3EF8C", got)
	}
}

func TestDecryptLocalRoundTrip(t *testing.T) {
	key := testLocalKey()
	payload := []byte("the quick brown fox jumps over the lazy dog")
	encrypted := encryptLocal(t, payload, key)

	plain, err := decryptLocal(encrypted, key)
	if err != nil {
		t.Fatalf("decryptLocal: %v", err)
	}
	if !bytes.Equal(plain, payload) {
		t.Fatalf("payload mismatch: got %q", plain)
	}
}

func TestDecryptLocalTamperedBlob(t *testing.T) {
	key := testLocalKey()
	encrypted := encryptLocal(t, []byte("payload"), key)
	encrypted[20] ^= 0xFF

	if _, err := decryptLocal(encrypted, key); !errors.Is(err, ErrCredentialCorrupt) {
		t.Fatalf("err = %v, want ErrCredentialCorrupt", err)
	}
}

func TestReadTDFChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key_datas")
	writeTDFFile(t, path, 1, []byte("hello"))

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw[10] ^= 0x01
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := readTDF(path); !errors.Is(err, ErrCredentialCorrupt) {
		t.Fatalf("err = %v, want ErrCredentialCorrupt", err)
	}
}

func TestProbeClassification(t *testing.T) {
	cases := []struct {
		name    string
		files   []string
		dirs    []string
		want    Layout
		wantErr error
	}{
		{
			name:  "new multi account",
			files: []string{"key_datas"},
			dirs:  []string{"user_data", "user_data#2"},
			want:  LayoutNewMulti,
		},
		{
			name:  "legacy",
			files: []string{"key_data"},
			dirs:  []string{"D877F783D5D3EF8C"},
			want:  LayoutLegacy,
		},
		{
			name:    "logged out",
			wantErr: ErrNotAuthenticated,
		},
		{
			name:    "stray files only",
			files:   []string{"settings", "shortcuts-custom.json"},
			wantErr: ErrNotAuthenticated,
		},
		{
			name: "account folders without key file",
			dirs: []string{"user_data"},
			want: LayoutUnsupported,
		},
		{
			name:  "key file without account folders",
			files: []string{"key_data"},
			want:  LayoutUnsupported,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range tc.files {
				if err := os.WriteFile(filepath.Join(root, f), []byte("x"), 0o600); err != nil {
					t.Fatal(err)
				}
			}
			for _, d := range tc.dirs {
				if err := os.Mkdir(filepath.Join(root, d), 0o700); err != nil {
					t.Fatal(err)
				}
			}

			report, err := Probe(root)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if report.Layout != tc.want {
				t.Fatalf("layout = %s, want %s", report.Layout, tc.want)
			}
		})
	}
}

func TestProbeMissingTree(t *testing.T) {
	if _, err := Probe(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrNoDesktopClient) {
		t.Fatalf("err = %v, want ErrNoDesktopClient", err)
	}
}

func TestReadExtractsAccount(t *testing.T) {
	root := buildTree(t, 777000123, 2)

	cred, err := Read(root)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cred.UserID != 777000123 {
		t.Fatalf("user id = %d, want 777000123", cred.UserID)
	}
	if cred.PrimaryDCID != 2 {
		t.Fatalf("primary dc = %d, want 2", cred.PrimaryDCID)
	}
	if len(cred.AuthKeys) != 2 {
		t.Fatalf("auth keys = %d, want 2", len(cred.AuthKeys))
	}
	if !bytes.Equal(cred.PrimaryKey(), testAuthKey(0xA5)) {
		t.Fatal("primary key bytes mismatch")
	}
	if err := cred.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestReadCorruptAccountFile(t *testing.T) {
	root := buildTree(t, 42, 1)

	// Re-encrypt the account blob under a different key so the MAC fails.
	path := filepath.Join(root, filePart("data")+"s")
	var account bytes.Buffer
	writeBEBytes(&account, encryptLocal(t, []byte("junk"), testAuthKey(0x11)))
	writeTDFFile(t, path, 1, account.Bytes())

	if _, err := Read(root); !errors.Is(err, ErrCredentialCorrupt) {
		t.Fatalf("err = %v, want ErrCredentialCorrupt", err)
	}
}

func TestValidateRejectsBadCredential(t *testing.T) {
	cases := []struct {
		name string
		cred AccountCredential
	}{
		{"dc out of range", AccountCredential{PrimaryDCID: 9, AuthKeys: map[int][]byte{9: testAuthKey(0)}}},
		{"missing key", AccountCredential{PrimaryDCID: 2, AuthKeys: map[int][]byte{1: testAuthKey(0)}}},
		{"short key", AccountCredential{PrimaryDCID: 2, AuthKeys: map[int][]byte{2: {1, 2, 3}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cred.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
