package credential

import (
	"bytes"
	"crypto/aes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// localKeyIterations PBKDF2 rounds for a passcode-protected key
	localKeyIterations = 100000
	// legacyKeyIterations PBKDF2-SHA1 rounds of the pre-multi-account scheme
	legacyKeyIterations = 4000
)

// createLocalKey derives the 256-byte local key from passcode and salt
// (SHA-512 salt sandwich, then PBKDF2-SHA512; a single round when the key is
// not passcode-protected).
func createLocalKey(passcode, salt []byte) []byte {
	iterations := 1
	if len(passcode) > 0 {
		iterations = localKeyIterations
	}

	h := sha512.New()
	h.Write(salt)
	h.Write(passcode)
	h.Write(salt)
	passHash := h.Sum(nil)

	return pbkdf2.Key(passHash, salt, iterations, AuthKeySize, sha512.New)
}

// createLegacyLocalKey derives the local key the way pre-multi-account trees
// did (PBKDF2-SHA1 over the raw passcode).
func createLegacyLocalKey(passcode, salt []byte) []byte {
	iterations := 4
	if len(passcode) > 0 {
		iterations = legacyKeyIterations
	}
	return pbkdf2.Key(passcode, salt, iterations, AuthKeySize, sha1.New)
}

// prepareAESOldMTP the SHA-1 key schedule of the original MTProto local
// encryption: derives the AES key and IV from the 256-byte auth key and the
// 16-byte message key, at fixed offset 8 for local storage.
func prepareAESOldMTP(authKey, msgKey []byte) (aesKey, aesIV []byte) {
	const x = 8

	sha1a := sha1.Sum(append(append([]byte{}, msgKey...), authKey[x:x+32]...))
	sha1b := sha1.Sum(concat(authKey[x+32:x+48], msgKey, authKey[x+48:x+64]))
	sha1c := sha1.Sum(append(append([]byte{}, authKey[x+64:x+96]...), msgKey...))
	sha1d := sha1.Sum(append(append([]byte{}, msgKey...), authKey[x+96:x+128]...))

	aesKey = concat(sha1a[0:8], sha1b[8:20], sha1c[4:16])
	aesIV = concat(sha1a[8:20], sha1b[0:8], sha1c[16:20], sha1d[0:8])
	return aesKey, aesIV
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// aesIGEDecrypt AES-256 decryption in IGE mode
func aesIGEDecrypt(ciphertext, key, iv []byte) ([]byte, error) {
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext not block-aligned", ErrCredentialCorrupt)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	iv1 := append([]byte{}, iv[:aes.BlockSize]...)
	iv2 := append([]byte{}, iv[aes.BlockSize:2*aes.BlockSize]...)

	var tmp [aes.BlockSize]byte
	for i := 0; i < len(ciphertext); i += aes.BlockSize {
		in := ciphertext[i : i+aes.BlockSize]
		out := plaintext[i : i+aes.BlockSize]

		for j := 0; j < aes.BlockSize; j++ {
			tmp[j] = in[j] ^ iv2[j]
		}
		block.Decrypt(out, tmp[:])
		for j := 0; j < aes.BlockSize; j++ {
			out[j] ^= iv1[j]
		}

		copy(iv1, in)
		copy(iv2, out)
	}
	return plaintext, nil
}

// decryptLocal opens one locally-encrypted blob: 16-byte message key followed
// by AES-IGE ciphertext. The decrypted payload carries its own length in the
// first 4 bytes and is authenticated against the message key.
func decryptLocal(encrypted, authKey []byte) ([]byte, error) {
	if len(encrypted) < 16+aes.BlockSize {
		return nil, fmt.Errorf("%w: encrypted blob too short", ErrCredentialCorrupt)
	}
	msgKey := encrypted[:16]
	ciphertext := encrypted[16:]

	aesKey, aesIV := prepareAESOldMTP(authKey, msgKey)
	decrypted, err := aesIGEDecrypt(ciphertext, aesKey, aesIV)
	if err != nil {
		return nil, err
	}

	check := sha1.Sum(decrypted)
	if !bytes.Equal(check[:16], msgKey) {
		return nil, fmt.Errorf("%w: message key mismatch", ErrCredentialCorrupt)
	}

	length := binary.LittleEndian.Uint32(decrypted[:4])
	if length < 4 || int(length) > len(decrypted) {
		return nil, fmt.Errorf("%w: declared length %d out of bounds", ErrCredentialCorrupt, length)
	}
	return decrypted[4:length], nil
}

// filePart renders the on-disk name of a data file: first 8 bytes of the
// MD5 of the data name, nibble-swapped, upper-case hex.
func filePart(dataName string) string {
	sum := md5.Sum([]byte(dataName))
	const hexDigits = "0123456789ABCDEF"
	out := make([]byte, 16)
	for i := 0; i < 8; i++ {
		out[2*i] = hexDigits[sum[i]&0x0F]
		out[2*i+1] = hexDigits[sum[i]>>4]
	}
	return string(out)
}
