package redis

import (
	"encoding/binary"
	"testing"
	"time"
)

// The revoke script patches bytes in place. If the fixed offsets drift the
// script corrupts records, so pin them here.
func TestEncodedOffsetsMatchScript(t *testing.T) {
	rec := testRecord("tok-1", "u-1")
	data, err := encodeRecord(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if data[0] != recordFormatVersion {
		t.Fatalf("version byte = %d, want %d", data[0], recordFormatVersion)
	}
	if data[offsetRevoked] != 0 {
		t.Fatalf("revoked byte = %d, want 0", data[offsetRevoked])
	}

	updated := int64(binary.BigEndian.Uint64(data[offsetUpdatedAt : offsetUpdatedAt+8]))
	if updated != rec.UpdatedAt.Unix() {
		t.Fatalf("updatedAt at offset %d = %d, want %d", offsetUpdatedAt, updated, rec.UpdatedAt.Unix())
	}

	// Flip the revoked byte the way the script does and decode.
	data[offsetRevoked] = 1
	stamp := time.Now().Unix()
	binary.BigEndian.PutUint64(data[offsetUpdatedAt:offsetUpdatedAt+8], uint64(stamp))

	got, err := decodeRecord(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Revoked {
		t.Fatal("flipped record decoded as not revoked")
	}
	if got.UpdatedAt.Unix() != stamp {
		t.Fatalf("updatedAt = %d, want %d", got.UpdatedAt.Unix(), stamp)
	}
	if got.ID != rec.ID || got.SubjectID != rec.SubjectID {
		t.Fatalf("identity fields corrupted: %+v", got)
	}
}

func TestDecodeRejectsCorruptBlobs(t *testing.T) {
	cases := map[string][]byte{
		"empty":       {},
		"bad version": {9, 0, 0},
		"truncated":   {recordFormatVersion, 0, 1, 2},
		"short tail":  append([]byte{recordFormatVersion, 0}, make([]byte, 32)...),
		"id overruns": append(append([]byte{recordFormatVersion, 0}, make([]byte, 32)...), 200, 'x'),
	}

	for name, blob := range cases {
		if _, err := decodeRecord(blob); err == nil {
			t.Errorf("%s: expected decode error", name)
		}
	}
}
