// Package snapshot implements the versioned, compressed document-state
// serializer of spec.md §4.5: canonical JSON, optional gzip, and a fixed
// integrity-checked header. Grounded on the teacher's JSON-tagged keyframe
// structs in internal/sim/snapshot.go and internal/sim/keyframe.go,
// generalized from game Actor/NPC fields to Document/Artboard/Layer/
// VectorObject fields.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"io"

	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/ids"
)

// Compression identifies the payload encoding below the header.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionGzip Compression = 1
)

// FormatVersion is the current snapshot wire format version.
const FormatVersion uint16 = 1

// magic is the fixed 4-byte header prefix.
var magic = [4]byte{'W', 'T', 'S', '1'}

// headerSize is the fixed header length: magic(4) + version(2) +
// compression(1) + uncompressedSize(4) + crc32(4).
const headerSize = 4 + 2 + 1 + 4 + 4

// Snapshot is a serialized Document at a specific event sequence.
type Snapshot struct {
	DocumentID    ids.DocumentID `json:"documentId"`
	EventSequence int64          `json:"eventSequence"`
	CreatedAt     int64          `json:"createdAt"`
	Compression   Compression    `json:"compression"`
	Payload       []byte         `json:"payload"`
}

// GzipLevel is the fixed compression level used for gzip snapshots
// (spec.md §4.5 step 3).
const GzipLevel = 6

// Encode serializes doc at sequence into the on-disk header+payload byte
// format. createdAt is a caller-supplied unix-ms timestamp (kept injectable
// for deterministic tests, following the teacher's Clock-injection idiom).
func Encode(doc docmodel.Document, sequence int64, createdAt int64, compression Compression) ([]byte, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, engineerr.Wrap("snapshot.Encode", engineerr.CorruptSnapshot, err)
	}

	uncompressedSize := uint32(len(body))
	crc := crc32.ChecksumIEEE(body)

	payload := body
	if compression == CompressionGzip {
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, GzipLevel)
		if err != nil {
			return nil, engineerr.Wrap("snapshot.Encode", engineerr.CorruptSnapshot, err)
		}
		if _, err := w.Write(body); err != nil {
			return nil, engineerr.Wrap("snapshot.Encode", engineerr.CorruptSnapshot, err)
		}
		if err := w.Close(); err != nil {
			return nil, engineerr.Wrap("snapshot.Encode", engineerr.CorruptSnapshot, err)
		}
		payload = buf.Bytes()
	}

	header := make([]byte, headerSize)
	copy(header[0:4], magic[:])
	binary.BigEndian.PutUint16(header[4:6], FormatVersion)
	header[6] = byte(compression)
	binary.BigEndian.PutUint32(header[7:11], uncompressedSize)
	binary.BigEndian.PutUint32(header[11:15], crc)

	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	out = append(out, payload...)
	return out, nil
}

// Decode parses the header+payload byte format back into a Document. A
// CRC mismatch or gzip inflate failure returns engineerr.CorruptSnapshot.
func Decode(data []byte) (docmodel.Document, error) {
	if len(data) < headerSize {
		return docmodel.Document{}, engineerr.New("snapshot.Decode", engineerr.CorruptSnapshot)
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return docmodel.Document{}, engineerr.New("snapshot.Decode", engineerr.CorruptSnapshot)
	}
	compression := Compression(data[6])
	uncompressedSize := binary.BigEndian.Uint32(data[7:11])
	wantCRC := binary.BigEndian.Uint32(data[11:15])
	payload := data[headerSize:]

	var body []byte
	switch compression {
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return docmodel.Document{}, engineerr.Wrap("snapshot.Decode", engineerr.CorruptSnapshot, err)
		}
		defer r.Close()
		decoded, err := io.ReadAll(r)
		if err != nil {
			return docmodel.Document{}, engineerr.Wrap("snapshot.Decode", engineerr.CorruptSnapshot, err)
		}
		body = decoded
	case CompressionNone:
		body = payload
	default:
		return docmodel.Document{}, engineerr.New("snapshot.Decode", engineerr.CorruptSnapshot)
	}

	if uint32(len(body)) != uncompressedSize {
		return docmodel.Document{}, engineerr.New("snapshot.Decode", engineerr.CorruptSnapshot)
	}
	if crc32.ChecksumIEEE(body) != wantCRC {
		return docmodel.Document{}, engineerr.New("snapshot.Decode", engineerr.CorruptSnapshot)
	}

	var doc docmodel.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return docmodel.Document{}, engineerr.Wrap("snapshot.Decode", engineerr.CorruptSnapshot, err)
	}
	return doc, nil
}
