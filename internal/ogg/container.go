// Package ogg decodes the identification headers of Ogg Vorbis and Ogg
// Opus streams.
package ogg

import (
	"bytes"
	"fmt"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

const (
	pageMagic      = "OggS"
	pageHeaderSize = 27

	flagContinued = 0x01

	// maxPageSize bounds one page: header, 255 lacing values, 255*255 bytes.
	maxPageSize = pageHeaderSize + 255 + 255*255
)

// Page represents an Ogg page.
//
// An Ogg page is the fundamental unit of the Ogg container format.
// Each page contains a header and payload data.
type Page struct {
	HeaderType      byte   // Bit flags: 0x01=continued, 0x02=BOS, 0x04=EOS
	GranulePosition int64  // Codec-defined position, -1 when no packet ends here
	SerialNumber    uint32 // Logical bitstream identifier
	SequenceNumber  uint32 // Page sequence number
	Lacing          []byte // Segment table
	Data            []byte // Page payload (one or more packets)
}

// readPage reads the Ogg page at the reader's cursor and advances past it.
func readPage(r *binary.Reader) (*Page, error) {
	start := r.Offset()
	header, err := r.ReadExact(pageHeaderSize, "Ogg page header")
	if err != nil {
		return nil, err
	}
	if string(header[0:4]) != pageMagic {
		return nil, &types.MalformedValueError{Format: types.FormatOgg, Field: "page magic", Reason: "missing OggS capture pattern", Offset: start}
	}
	if header[4] != 0 {
		return nil, &types.MalformedValueError{Format: types.FormatOgg, Field: "stream structure version", Reason: fmt.Sprintf("unsupported version %d", header[4]), Offset: start + 4}
	}

	lacing, err := r.ReadExact(int(header[26]), "segment table")
	if err != nil {
		return nil, err
	}
	dataSize := 0
	for _, seg := range lacing {
		dataSize += int(seg)
	}
	data, err := r.ReadExact(dataSize, "page data")
	if err != nil {
		return nil, err
	}

	return &Page{
		HeaderType:      header[5],
		GranulePosition: int64(binary.Decode[uint64](header[6:14], binary.LittleEndian)),
		SerialNumber:    binary.Decode[uint32](header[14:18], binary.LittleEndian),
		SequenceNumber:  binary.Decode[uint32](header[18:22], binary.LittleEndian),
		Lacing:          lacing,
		Data:            data,
	}, nil
}

// firstPacket returns the first complete packet of the stream, following
// it across page boundaries when its lacing runs off the end of a page.
// The first page is returned alongside it.
func firstPacket(r *binary.Reader) ([]byte, *Page, error) {
	var first *Page
	var packet []byte

	for {
		page, err := readPage(r)
		if err != nil {
			return nil, nil, err
		}
		if first == nil {
			first = page
		} else if page.SerialNumber != first.SerialNumber || page.HeaderType&flagContinued == 0 {
			// The packet never finished.
			return nil, nil, &types.MalformedValueError{Format: types.FormatOgg, Field: "first packet", Reason: "unterminated packet", Offset: r.Offset()}
		}

		pos := 0
		for _, seg := range page.Lacing {
			packet = append(packet, page.Data[pos:pos+int(seg)]...)
			pos += int(seg)
			if seg < 255 {
				return packet, first, nil
			}
		}
	}
}

// lastGranulePosition scans backwards from the end of the readable window
// for the last page of the given logical stream that carries a granule
// position.
//
// ok is false when no such page exists in the final maxPageSize bytes.
func lastGranulePosition(sr *binary.SafeReader, serial uint32) (granule int64, ok bool, err error) {
	size := sr.Size()
	searchStart := max(size-maxPageSize, 0)

	buf := make([]byte, size-searchStart)
	if err := sr.ReadAt(buf, searchStart, "final pages"); err != nil {
		return 0, false, err
	}

	magic := []byte(pageMagic)
	for end := len(buf); ; {
		i := bytes.LastIndex(buf[:end], magic)
		if i < 0 {
			return 0, false, nil
		}
		end = i
		if len(buf)-i < pageHeaderSize || buf[i+4] != 0 {
			continue
		}
		if binary.Decode[uint32](buf[i+14:i+18], binary.LittleEndian) != serial {
			continue
		}
		g := int64(binary.Decode[uint64](buf[i+6:i+14], binary.LittleEndian))
		if g == -1 {
			continue
		}
		return g, true, nil
	}
}
