package credential

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// tdfMagic container magic of desktop client data files
var tdfMagic = []byte("TDF$")

// tdfFile a parsed TDF container: version header, payload, MD5 trailer
type tdfFile struct {
	Version int32
	Data    []byte
}

// readTDF reads and verifies one TDF container. The trailing 16 bytes are an
// MD5 over data + data length + version + magic.
func readTDF(path string) (*tdfFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) < 4+4+16 || !bytes.Equal(raw[:4], tdfMagic) {
		return nil, fmt.Errorf("%w: bad container header", ErrCredentialCorrupt)
	}

	version := int32(binary.LittleEndian.Uint32(raw[4:8]))
	data := raw[8 : len(raw)-16]
	sum := raw[len(raw)-16:]

	h := md5.New()
	h.Write(data)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	h.Write(lenBuf[:])
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(version))
	h.Write(lenBuf[:])
	h.Write(tdfMagic)
	if !bytes.Equal(h.Sum(nil), sum) {
		return nil, fmt.Errorf("%w: container checksum mismatch", ErrCredentialCorrupt)
	}

	return &tdfFile{Version: version, Data: data}, nil
}

// openTDF resolves the double-write naming scheme: the client writes files
// under the base name or with a 0/1/s suffix. The first readable candidate
// wins.
func openTDF(dir, base string) (*tdfFile, error) {
	for _, suffix := range []string{"", "s", "0", "1"} {
		candidate := filepath.Join(dir, base+suffix)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		tdf, err := readTDF(candidate)
		if err != nil {
			continue
		}
		return tdf, nil
	}
	return nil, os.ErrNotExist
}

// streamReader big-endian field reader over a TDF payload (Qt stream framing)
type streamReader struct {
	buf *bytes.Reader
}

func newStreamReader(data []byte) *streamReader {
	return &streamReader{buf: bytes.NewReader(data)}
}

func (r *streamReader) remaining() int {
	return r.buf.Len()
}

// readInt32 read one big-endian int32
func (r *streamReader) readInt32() (int32, error) {
	var v int32
	if err := binary.Read(r.buf, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("%w: truncated stream", ErrCredentialCorrupt)
	}
	return v, nil
}

// readInt64 read one big-endian int64
func (r *streamReader) readInt64() (int64, error) {
	var v int64
	if err := binary.Read(r.buf, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("%w: truncated stream", ErrCredentialCorrupt)
	}
	return v, nil
}

// readBytes read a length-prefixed byte array; 0xFFFFFFFF encodes null
func (r *streamReader) readBytes() ([]byte, error) {
	var length uint32
	if err := binary.Read(r.buf, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("%w: truncated stream", ErrCredentialCorrupt)
	}
	if length == 0xFFFFFFFF {
		return nil, nil
	}
	if int(length) > r.buf.Len() {
		return nil, fmt.Errorf("%w: field length %d exceeds stream", ErrCredentialCorrupt, length)
	}
	out := make([]byte, length)
	if _, err := r.buf.Read(out); err != nil {
		return nil, fmt.Errorf("%w: truncated stream", ErrCredentialCorrupt)
	}
	return out, nil
}

// readRaw read exactly n raw bytes
func (r *streamReader) readRaw(n int) ([]byte, error) {
	if n > r.buf.Len() {
		return nil, fmt.Errorf("%w: truncated stream", ErrCredentialCorrupt)
	}
	out := make([]byte, n)
	if _, err := r.buf.Read(out); err != nil {
		return nil, fmt.Errorf("%w: truncated stream", ErrCredentialCorrupt)
	}
	return out, nil
}
