// Package segment serialises an inverted index into a self-describing
// binary blob: a fixed header, JSON posting lists, a JSON term dictionary,
// a JSON length table, and a CRC-checked footer. Blobs are stored through
// the artifact store, so the codec works on byte slices rather than files.
package segment

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/index"
)

// MagicBytes identifies a valid segment blob.
const (
	MagicBytes    uint32 = 0x41534958
	FormatVersion uint32 = 2
	HeaderSize    int    = 64
	FooterSize    int    = 16
)

// SegmentHeader is the 64-byte header written at the start of every segment.
type SegmentHeader struct {
	Magic      uint32
	Version    uint32
	TermCount  uint32
	IDCount    uint32
	DictOffset int64
	DictSize   int64
	PostOffset int64
	PostSize   int64
	LenOffset  int64
	LenSize    int64
	CreatedAt  int64
}

// DictEntry maps a term to its postings offset and length in the blob.
type DictEntry struct {
	Term       string `json:"t"`
	PostOffset int64  `json:"o"`
	PostLen    int    `json:"l"`
	DocFreq    int    `json:"d"`
}

// Encode serialises x.
func Encode(x *index.Index) ([]byte, error) {
	entries := x.Snapshot()
	lengths := x.Lengths()

	var buf bytes.Buffer
	buf.Write(make([]byte, HeaderSize))

	postingsStart := int64(buf.Len())
	dict := make([]DictEntry, 0, len(entries))
	for _, entry := range entries {
		relativeOffset := int64(buf.Len()) - postingsStart
		postingsData, err := json.Marshal(entry.Postings)
		if err != nil {
			return nil, fmt.Errorf("marshaling postings for term %q: %w", entry.Term, err)
		}
		buf.Write(postingsData)
		dict = append(dict, DictEntry{
			Term:       entry.Term,
			PostOffset: relativeOffset,
			PostLen:    len(postingsData),
			DocFreq:    len(entry.Postings),
		})
	}
	postingsSize := int64(buf.Len()) - postingsStart

	dictStart := int64(buf.Len())
	dictData, err := json.Marshal(dict)
	if err != nil {
		return nil, fmt.Errorf("marshaling dictionary: %w", err)
	}
	buf.Write(dictData)

	lenStart := int64(buf.Len())
	lenData, err := json.Marshal(lengths)
	if err != nil {
		return nil, fmt.Errorf("marshaling lengths: %w", err)
	}
	buf.Write(lenData)

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(dictData))
	binary.LittleEndian.PutUint32(footer[4:8], crc32.ChecksumIEEE(lenData))
	binary.LittleEndian.PutUint64(footer[8:16], uint64(postingsSize))
	buf.Write(footer)

	out := buf.Bytes()
	header := out[:HeaderSize]
	binary.LittleEndian.PutUint32(header[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(entries)))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(lengths)))
	binary.LittleEndian.PutUint64(header[16:24], uint64(dictStart))
	binary.LittleEndian.PutUint64(header[24:32], uint64(len(dictData)))
	binary.LittleEndian.PutUint64(header[32:40], uint64(postingsStart))
	binary.LittleEndian.PutUint64(header[40:48], uint64(postingsSize))
	binary.LittleEndian.PutUint32(header[48:52], uint32(lenStart))
	binary.LittleEndian.PutUint32(header[52:56], uint32(len(lenData)))
	binary.LittleEndian.PutUint64(header[56:64], uint64(time.Now().Unix()))
	return out, nil
}
