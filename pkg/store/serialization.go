package store

import (
	"encoding/binary"
	"fmt"

	"github.com/zledger/treasury/pkg/types"
)

// Serialization format:
// - owner:    32 bytes
// - data_len: 4 bytes (little-endian uint32)
// - data:     data_len bytes
//
// Total fixed size: 32 + 4 = 36 bytes + variable data

const serializationMinSize = 32 + 4

// SerializeRecord serializes a record to binary format.
func SerializeRecord(record Record) []byte {
	dataLen := len(record.Data)
	buf := make([]byte, serializationMinSize+dataLen)

	offset := 0

	// Write owner (32 bytes)
	copy(buf[offset:], record.Owner[:])
	offset += 32

	// Write data_len (4 bytes, little-endian)
	binary.LittleEndian.PutUint32(buf[offset:], uint32(dataLen))
	offset += 4

	// Write data
	if dataLen > 0 {
		copy(buf[offset:], record.Data)
	}

	return buf
}

// DeserializeRecord deserializes a record from binary format.
func DeserializeRecord(data []byte) (Record, error) {
	if len(data) < serializationMinSize {
		return Record{}, fmt.Errorf("%w: need at least %d bytes, got %d",
			ErrInvalidRecordData, serializationMinSize, len(data))
	}

	offset := 0

	// Read owner (32 bytes)
	var owner types.Pubkey
	copy(owner[:], data[offset:offset+32])
	offset += 32

	// Read data_len (4 bytes, little-endian)
	dataLen := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	expectedSize := serializationMinSize + int(dataLen)
	if len(data) < expectedSize {
		return Record{}, fmt.Errorf("%w: length mismatch, expected %d bytes, got %d",
			ErrInvalidRecordData, expectedSize, len(data))
	}

	// Read data
	var recordData []byte
	if dataLen > 0 {
		recordData = make([]byte, dataLen)
		copy(recordData, data[offset:offset+int(dataLen)])
	}

	return Record{Owner: owner, Data: recordData}, nil
}
