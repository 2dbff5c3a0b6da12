package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/index"
)

// ReadHeader parses and validates the fixed header.
func ReadHeader(data []byte) (SegmentHeader, error) {
	if len(data) < HeaderSize+FooterSize {
		return SegmentHeader{}, fmt.Errorf("segment too short: %d bytes", len(data))
	}
	h := data[:HeaderSize]
	magic := binary.LittleEndian.Uint32(h[0:4])
	if magic != MagicBytes {
		return SegmentHeader{}, fmt.Errorf("invalid segment: bad magic bytes %x", magic)
	}
	header := SegmentHeader{
		Magic:      magic,
		Version:    binary.LittleEndian.Uint32(h[4:8]),
		TermCount:  binary.LittleEndian.Uint32(h[8:12]),
		IDCount:    binary.LittleEndian.Uint32(h[12:16]),
		DictOffset: int64(binary.LittleEndian.Uint64(h[16:24])),
		DictSize:   int64(binary.LittleEndian.Uint64(h[24:32])),
		PostOffset: int64(binary.LittleEndian.Uint64(h[32:40])),
		PostSize:   int64(binary.LittleEndian.Uint64(h[40:48])),
		LenOffset:  int64(binary.LittleEndian.Uint32(h[48:52])),
		LenSize:    int64(binary.LittleEndian.Uint32(h[52:56])),
		CreatedAt:  int64(binary.LittleEndian.Uint64(h[56:64])),
	}
	if header.Version != FormatVersion {
		return SegmentHeader{}, fmt.Errorf("unsupported segment version %d", header.Version)
	}
	end := int64(len(data) - FooterSize)
	if header.DictOffset+header.DictSize > end || header.LenOffset+header.LenSize > end ||
		header.PostOffset+header.PostSize > end {
		return SegmentHeader{}, fmt.Errorf("segment sections exceed blob size")
	}
	return header, nil
}

// Decode rebuilds the index stored in data, verifying section checksums.
func Decode(data []byte) (*index.Index, error) {
	header, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	footer := data[len(data)-FooterSize:]

	dictBytes := data[header.DictOffset : header.DictOffset+header.DictSize]
	if crc32.ChecksumIEEE(dictBytes) != binary.LittleEndian.Uint32(footer[0:4]) {
		return nil, fmt.Errorf("dictionary checksum mismatch")
	}
	lenBytes := data[header.LenOffset : header.LenOffset+header.LenSize]
	if crc32.ChecksumIEEE(lenBytes) != binary.LittleEndian.Uint32(footer[4:8]) {
		return nil, fmt.Errorf("length table checksum mismatch")
	}

	var dict []DictEntry
	if err := json.Unmarshal(dictBytes, &dict); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}
	var lengths []uint32
	if err := json.Unmarshal(lenBytes, &lengths); err != nil {
		return nil, fmt.Errorf("parsing lengths: %w", err)
	}

	entries := make([]index.TermEntry, 0, len(dict))
	for _, d := range dict {
		start := header.PostOffset + d.PostOffset
		var postings index.PostingList
		if err := json.Unmarshal(data[start:start+int64(d.PostLen)], &postings); err != nil {
			return nil, fmt.Errorf("parsing postings for term %q: %w", d.Term, err)
		}
		entries = append(entries, index.TermEntry{Term: d.Term, Postings: postings})
	}
	return index.FromSnapshot(entries, lengths), nil
}
