package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/galvinograd/purple-titanium/internal/pterrors"
)

// magic identifies a Purple Titanium cache entry; formatVersion is the
// on-disk layout version, independent of any task's own Version.
var magic = [4]byte{'P', 'T', '0', '1'}

const formatVersion uint64 = 1

// FSStore is the default backend: one file per signature, named by hex
// signature, under a configured root directory.
type FSStore struct {
	root string
	perm os.FileMode
}

// NewFSStore returns a backend rooted at dir. The directory is created on
// first Save if missing.
func NewFSStore(dir string) *FSStore {
	return &FSStore{root: dir, perm: 0o644}
}

func (s *FSStore) path(signatureHex string) string {
	return filepath.Join(s.root, signatureHex+".bin")
}

// Save writes e atomically: a temp file in the same directory is
// written, synced, and renamed over the final path, so a crash mid-write
// never leaves a corrupt entry the next Load could observe.
func (s *FSStore) Save(ctx context.Context, signatureHex string, e Entry) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return pterrors.WrapStorage("mkdir cache root", err)
	}

	data := encode(e)
	if err := writeFileAtomic(s.path(signatureHex), data, s.perm); err != nil {
		return pterrors.WrapStorage("save cache entry", err)
	}
	return nil
}

// Load reads and validates the entry for signatureHex. A header or
// checksum mismatch is reported as CacheCorruptionError so the caller can
// invalidate and recompute rather than trust a partially-written or
// tampered file.
func (s *FSStore) Load(ctx context.Context, signatureHex string) (Entry, error) {
	data, err := os.ReadFile(s.path(signatureHex))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, pterrors.WrapStorage("load cache entry", err)
		}
		return Entry{}, pterrors.WrapStorage("load cache entry", err)
	}
	e, err := decode(data)
	if err != nil {
		return Entry{}, &pterrors.CacheCorruptionError{Signature: signatureHex, Reason: err.Error()}
	}
	return e, nil
}

// Exists reports whether an entry file is present, without validating it.
func (s *FSStore) Exists(ctx context.Context, signatureHex string) (bool, error) {
	_, err := os.Stat(s.path(signatureHex))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, pterrors.WrapStorage("stat cache entry", err)
}

// Invalidate removes the entry file for signatureHex, if present.
func (s *FSStore) Invalidate(ctx context.Context, signatureHex string) error {
	err := os.Remove(s.path(signatureHex))
	if err != nil && !os.IsNotExist(err) {
		return pterrors.WrapStorage("invalidate cache entry", err)
	}
	return nil
}

// Signatures lists every signature with a persisted entry file, by
// reading the cache root directory; a missing root is an empty cache.
func (s *FSStore) Signatures(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pterrors.WrapStorage("list cache entries", err)
	}
	out := make([]string, 0, len(entries))
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		const ext = ".bin"
		if filepath.Ext(name) == ext {
			out = append(out, name[:len(name)-len(ext)])
		}
	}
	return out, nil
}

// encode renders e as: magic(4) | formatVersion(8) | format(1) |
// nameLen(2) | name(nameLen) | checksum(32) | payload.
func encode(e Entry) []byte {
	checksum := blake2b.Sum256(e.Payload)

	buf := new(bytes.Buffer)
	buf.Write(magic[:])
	_ = binary.Write(buf, binary.BigEndian, formatVersion)
	buf.WriteByte(byte(e.Format))
	nameBytes := []byte(e.TaskName)
	_ = binary.Write(buf, binary.BigEndian, uint16(len(nameBytes)))
	buf.Write(nameBytes)
	buf.Write(checksum[:])
	buf.Write(e.Payload)
	return buf.Bytes()
}

func decode(data []byte) (Entry, error) {
	const headerMin = 4 + 8 + 1 + 2
	if len(data) < headerMin {
		return Entry{}, fmt.Errorf("truncated header: %d bytes", len(data))
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return Entry{}, fmt.Errorf("bad magic: %x", data[:4])
	}
	off := 4
	ver := binary.BigEndian.Uint64(data[off : off+8])
	off += 8
	if ver != formatVersion {
		return Entry{}, fmt.Errorf("unsupported format version: %d", ver)
	}
	format := Format(data[off])
	off++
	nameLen := int(binary.BigEndian.Uint16(data[off : off+2]))
	off += 2
	if len(data) < off+nameLen+32 {
		return Entry{}, fmt.Errorf("truncated name/checksum section")
	}
	name := string(data[off : off+nameLen])
	off += nameLen
	var wantChecksum [32]byte
	copy(wantChecksum[:], data[off:off+32])
	off += 32
	payload := data[off:]

	gotChecksum := blake2b.Sum256(payload)
	if gotChecksum != wantChecksum {
		return Entry{}, fmt.Errorf("checksum mismatch: payload does not match stored checksum")
	}

	return Entry{TaskName: name, Format: format, Payload: payload}, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
