package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/zledger/treasury/pkg/types"
)

// Snapshot errors
var (
	// ErrInvalidSnapshot is returned when a snapshot stream is malformed.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrSnapshotVersion is returned for an unsupported snapshot version.
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
)

// Snapshot stream format (zstd-compressed after the magic):
// - magic:   8 bytes ("TRYSNAP" + version byte)
// - count:   8 bytes (little-endian uint64)
// - entries: count times
//   - id:         32 bytes
//   - record_len: 4 bytes (little-endian uint32)
//   - record:     record_len bytes (SerializeRecord format)

const snapshotVersion = 1

var snapshotMagic = [8]byte{'T', 'R', 'Y', 'S', 'N', 'A', 'P', snapshotVersion}

// WriteSnapshot exports the full store contents as a zstd-compressed
// snapshot stream.
func WriteSnapshot(s Store, w io.Writer) error {
	if _, err := w.Write(snapshotMagic[:]); err != nil {
		return fmt.Errorf("failed to write snapshot magic: %w", err)
	}

	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	var countBuf [8]byte
	binary.LittleEndian.PutUint64(countBuf[:], s.Count())
	if _, err := encoder.Write(countBuf[:]); err != nil {
		encoder.Close()
		return fmt.Errorf("failed to write account count: %w", err)
	}

	err = s.ForEach(func(e Entry) error {
		if _, err := encoder.Write(e.ID[:]); err != nil {
			return err
		}

		recordBytes := SerializeRecord(e.Record)
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(recordBytes)))
		if _, err := encoder.Write(lenBuf[:]); err != nil {
			return err
		}
		_, err := encoder.Write(recordBytes)
		return err
	})
	if err != nil {
		encoder.Close()
		return fmt.Errorf("failed to write snapshot entries: %w", err)
	}

	return encoder.Close()
}

// ReadSnapshot imports a snapshot stream into the store. Existing
// records with the same ids are overwritten; the import itself is
// applied as one atomic batch.
func ReadSnapshot(s Store, r io.Reader) error {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return fmt.Errorf("%w: missing magic: %v", ErrInvalidSnapshot, err)
	}
	if magic != snapshotMagic {
		if bytes.Equal(magic[:7], snapshotMagic[:7]) {
			return fmt.Errorf("%w: got version %d, want %d", ErrSnapshotVersion, magic[7], snapshotVersion)
		}
		return fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}

	decoder, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var countBuf [8]byte
	if _, err := io.ReadFull(decoder, countBuf[:]); err != nil {
		return fmt.Errorf("%w: missing account count: %v", ErrInvalidSnapshot, err)
	}
	count := binary.LittleEndian.Uint64(countBuf[:])

	// The count comes from the stream; cap the preallocation so a
	// corrupt header cannot demand arbitrary memory up front.
	capHint := count
	if capHint > 4096 {
		capHint = 4096
	}
	entries := make([]Entry, 0, capHint)
	for i := uint64(0); i < count; i++ {
		var id types.Pubkey
		if _, err := io.ReadFull(decoder, id[:]); err != nil {
			return fmt.Errorf("%w: truncated entry %d: %v", ErrInvalidSnapshot, i, err)
		}

		var lenBuf [4]byte
		if _, err := io.ReadFull(decoder, lenBuf[:]); err != nil {
			return fmt.Errorf("%w: truncated entry %d: %v", ErrInvalidSnapshot, i, err)
		}
		recordLen := binary.LittleEndian.Uint32(lenBuf[:])

		recordBytes := make([]byte, recordLen)
		if _, err := io.ReadFull(decoder, recordBytes); err != nil {
			return fmt.Errorf("%w: truncated entry %d: %v", ErrInvalidSnapshot, i, err)
		}

		record, err := DeserializeRecord(recordBytes)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}

		entries = append(entries, Entry{ID: id, Record: record})
	}

	return s.SetBatch(entries)
}
