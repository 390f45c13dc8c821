package redis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/authward/authward/store"
)

const recordFormatVersion = 1

// Byte offsets used by the revoke Lua script. The revoked flag and the
// updated-at stamp must stay at fixed positions so the script can patch
// them without parsing the variable-length tail.
const (
	offsetRevoked   = 1
	offsetUpdatedAt = 18
)

var errCorruptRecord = errors.New("corrupt refresh token record")

// encodeRecord serializes a record into the compact binary layout shared
// with the Lua revoke script:
//
//	byte 0      version
//	byte 1      revoked flag
//	bytes 2-9   issuedAt (unix seconds, big-endian)
//	bytes 10-17 expiresAt (unix seconds, big-endian)
//	bytes 18-25 updatedAt (unix seconds, big-endian)
//	bytes 26-33 createdAt (unix seconds, big-endian)
//	then        length-prefixed ID and subject ID
//
// The raw token value is never part of the blob.
func encodeRecord(rec *store.Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersion)
	if rec.Revoked {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	for _, ts := range []time.Time{rec.IssuedAt, rec.ExpiresAt, rec.UpdatedAt, rec.CreatedAt} {
		if err := binary.Write(&buf, binary.BigEndian, ts.Unix()); err != nil {
			return nil, err
		}
	}

	if len(rec.ID) > 255 {
		return nil, errors.New("record ID too long")
	}
	buf.WriteByte(byte(len(rec.ID)))
	buf.WriteString(rec.ID)

	if len(rec.SubjectID) > 255 {
		return nil, errors.New("subject ID too long")
	}
	buf.WriteByte(byte(len(rec.SubjectID)))
	buf.WriteString(rec.SubjectID)

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*store.Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, errCorruptRecord
	}
	if version != recordFormatVersion {
		return nil, errCorruptRecord
	}

	rec := &store.Record{}

	revoked, err := reader.ReadByte()
	if err != nil {
		return nil, errCorruptRecord
	}
	rec.Revoked = revoked == 1

	var issued, expires, updated, created int64
	for _, dst := range []*int64{&issued, &expires, &updated, &created} {
		if err := binary.Read(reader, binary.BigEndian, dst); err != nil {
			return nil, errCorruptRecord
		}
	}
	rec.IssuedAt = time.Unix(issued, 0).UTC()
	rec.ExpiresAt = time.Unix(expires, 0).UTC()
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	rec.CreatedAt = time.Unix(created, 0).UTC()

	idLen, err := reader.ReadByte()
	if err != nil {
		return nil, errCorruptRecord
	}
	id := make([]byte, idLen)
	if _, err := io.ReadFull(reader, id); err != nil {
		return nil, errCorruptRecord
	}
	rec.ID = string(id)

	subjLen, err := reader.ReadByte()
	if err != nil {
		return nil, errCorruptRecord
	}
	subj := make([]byte, subjLen)
	if _, err := io.ReadFull(reader, subj); err != nil {
		return nil, errCorruptRecord
	}
	rec.SubjectID = string(subj)

	return rec, nil
}
