// Package program implements the G10 linked program file format: the
// flat, directly-loadable image produced by package link from one or
// more object files.
//
// Grounded on _examples/original_source/projects/g10/program.hpp for the
// header/segment/info layout, encoded the way
// _examples/lookbusy1344-arm_emulator/loader/file.go encodes the
// teacher's own binary program image with encoding/binary.
package program

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const (
	Magic   = 0x47313050 // "G10P" read little-endian
	Version = 0x01000000

	// DefaultStackPointer is the reset value of the stack pointer when a
	// linked program does not otherwise specify one: the top of RAM.
	DefaultStackPointer = 0xFFFFFFFC

	headerSize  = 64
	segmentSize = 16
	infoSize    = 48
)

// Flags are program-level flags.
type Flags uint32

const (
	FlagHasInfo Flags = 1 << iota
)

// SegmentType is the type discriminant of a Segment.
type SegmentType uint16

const (
	SegmentCode SegmentType = iota
	SegmentData
	SegmentBss
	SegmentInterrupt
	SegmentMetadata
)

// SegmentFlags mirror object.SectionFlags, carried into the linked image.
type SegmentFlags uint16

const (
	SegmentAlloc SegmentFlags = 1 << iota
	SegmentWrite
	SegmentExec
)

// Segment is one contiguous region of the loaded image.
type Segment struct {
	LoadAddress uint32
	MemorySize  uint32
	FileSize    uint32 // 0 for a bss segment: no bytes on disk
	Type        SegmentType
	Flags       SegmentFlags
	Data        []byte // len(Data) == FileSize
}

// Info is the optional, human-facing metadata block populated by a
// source file's .metadata directives (SPEC_FULL.md supplemented
// feature).
type Info struct {
	Name        string
	Version     string
	Author      string
	Description string
	BuildDate   uint32 // seconds since epoch
}

// Program is a fully linked, directly loadable G10 image.
type Program struct {
	Flags        Flags
	EntryPoint   uint32
	StackPointer uint32
	Segments     []Segment
	Info         *Info
}

// Write serializes p to its bit-exact on-disk representation. The
// checksum in the info block, if present, is computed over the segment
// data that precedes it.
func (p *Program) Write() ([]byte, error) {
	var segBytes, segData bytes.Buffer
	for _, s := range p.Segments {
		binary.Write(&segBytes, binary.LittleEndian, s.LoadAddress)
		binary.Write(&segBytes, binary.LittleEndian, s.MemorySize)
		fileSize := s.FileSize
		if s.Type == SegmentBss {
			fileSize = 0
		} else {
			fileSize = uint32(len(s.Data))
		}
		binary.Write(&segBytes, binary.LittleEndian, fileSize)
		binary.Write(&segBytes, binary.LittleEndian, uint16(s.Type))
		binary.Write(&segBytes, binary.LittleEndian, uint16(s.Flags))
		if s.Type != SegmentBss {
			segData.Write(s.Data)
		}
	}

	flags := p.Flags
	var infoBytes bytes.Buffer
	if p.Info != nil {
		flags |= FlagHasInfo
		var blob bytes.Buffer
		nameOff, nameLen := blob.Len(), len(p.Info.Name)
		blob.WriteString(p.Info.Name)
		versionOff, versionLen := blob.Len(), len(p.Info.Version)
		blob.WriteString(p.Info.Version)
		authorOff, authorLen := blob.Len(), len(p.Info.Author)
		blob.WriteString(p.Info.Author)
		descOff, descLen := blob.Len(), len(p.Info.Description)
		blob.WriteString(p.Info.Description)

		checksum := crc32.ChecksumIEEE(segData.Bytes())

		binary.Write(&infoBytes, binary.LittleEndian, uint32(nameOff))
		binary.Write(&infoBytes, binary.LittleEndian, uint32(nameLen))
		binary.Write(&infoBytes, binary.LittleEndian, uint32(versionOff))
		binary.Write(&infoBytes, binary.LittleEndian, uint32(versionLen))
		binary.Write(&infoBytes, binary.LittleEndian, uint32(authorOff))
		binary.Write(&infoBytes, binary.LittleEndian, uint32(authorLen))
		binary.Write(&infoBytes, binary.LittleEndian, uint32(descOff))
		binary.Write(&infoBytes, binary.LittleEndian, uint32(descLen))
		binary.Write(&infoBytes, binary.LittleEndian, p.Info.BuildDate)
		binary.Write(&infoBytes, binary.LittleEndian, checksum)
		infoBytes.Write(make([]byte, infoSize-infoBytes.Len()))
		infoBytes.Write(blob.Bytes())
	}

	segOff := uint32(headerSize)
	dataOff := segOff + uint32(len(p.Segments))*segmentSize
	infoOff := dataOff + uint32(segData.Len())

	infoSizeField := uint32(0)
	infoOffField := uint32(0)
	if p.Info != nil {
		infoSizeField = uint32(infoBytes.Len())
		infoOffField = infoOff
	}

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint32(Magic))
	binary.Write(&out, binary.LittleEndian, uint32(Version))
	binary.Write(&out, binary.LittleEndian, uint32(flags))
	binary.Write(&out, binary.LittleEndian, p.EntryPoint)
	binary.Write(&out, binary.LittleEndian, p.StackPointer)
	binary.Write(&out, binary.LittleEndian, uint32(len(p.Segments)))
	binary.Write(&out, binary.LittleEndian, infoOffField)
	binary.Write(&out, binary.LittleEndian, infoSizeField)
	out.Write(make([]byte, headerSize-out.Len()))

	out.Write(segBytes.Bytes())
	out.Write(segData.Bytes())
	out.Write(infoBytes.Bytes())

	return out.Bytes(), nil
}

// Read parses a serialized program file produced by Write.
func Read(buf []byte) (*Program, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("program: truncated header (%d bytes)", len(buf))
	}
	r := bytes.NewReader(buf)
	var magic, version uint32
	binary.Read(r, binary.LittleEndian, &magic)
	binary.Read(r, binary.LittleEndian, &version)
	if magic != Magic {
		return nil, fmt.Errorf("program: bad magic %#x", magic)
	}
	if version != Version {
		return nil, fmt.Errorf("program: unsupported version %#x", version)
	}

	p := &Program{}
	var segCount, infoOff, infoSz, flags uint32
	binary.Read(r, binary.LittleEndian, &flags)
	binary.Read(r, binary.LittleEndian, &p.EntryPoint)
	binary.Read(r, binary.LittleEndian, &p.StackPointer)
	binary.Read(r, binary.LittleEndian, &segCount)
	binary.Read(r, binary.LittleEndian, &infoOff)
	binary.Read(r, binary.LittleEndian, &infoSz)
	p.Flags = Flags(flags)

	segOff := headerSize
	segHeaderEnd := segOff + int(segCount)*segmentSize
	if segHeaderEnd > len(buf) {
		return nil, fmt.Errorf("program: segment table out of range")
	}
	segRead := bytes.NewReader(buf[segOff:segHeaderEnd])
	dataCursor := segHeaderEnd
	for i := uint32(0); i < segCount; i++ {
		var s Segment
		var fileSize uint32
		var typ, fl uint16
		binary.Read(segRead, binary.LittleEndian, &s.LoadAddress)
		binary.Read(segRead, binary.LittleEndian, &s.MemorySize)
		binary.Read(segRead, binary.LittleEndian, &fileSize)
		binary.Read(segRead, binary.LittleEndian, &typ)
		binary.Read(segRead, binary.LittleEndian, &fl)
		s.FileSize = fileSize
		s.Type = SegmentType(typ)
		s.Flags = SegmentFlags(fl)
		if fileSize > 0 {
			if dataCursor+int(fileSize) > len(buf) {
				return nil, fmt.Errorf("program: segment %d data out of range", i)
			}
			s.Data = append([]byte(nil), buf[dataCursor:dataCursor+int(fileSize)]...)
			dataCursor += int(fileSize)
		}
		p.Segments = append(p.Segments, s)
	}

	if p.Flags&FlagHasInfo != 0 && infoSz > 0 {
		if int(infoOff)+int(infoSz) > len(buf) {
			return nil, fmt.Errorf("program: info block out of range")
		}
		ib := buf[infoOff : infoOff+infoSz]
		ir := bytes.NewReader(ib[:infoSize])
		var nameOff, nameLen, versionOff, versionLen uint32
		var authorOff, authorLen, descOff, descLen uint32
		var buildDate, checksum uint32
		binary.Read(ir, binary.LittleEndian, &nameOff)
		binary.Read(ir, binary.LittleEndian, &nameLen)
		binary.Read(ir, binary.LittleEndian, &versionOff)
		binary.Read(ir, binary.LittleEndian, &versionLen)
		binary.Read(ir, binary.LittleEndian, &authorOff)
		binary.Read(ir, binary.LittleEndian, &authorLen)
		binary.Read(ir, binary.LittleEndian, &descOff)
		binary.Read(ir, binary.LittleEndian, &descLen)
		binary.Read(ir, binary.LittleEndian, &buildDate)
		binary.Read(ir, binary.LittleEndian, &checksum)
		blob := ib[infoSize:]
		p.Info = &Info{
			Name:        string(blob[nameOff : nameOff+nameLen]),
			Version:     string(blob[versionOff : versionOff+versionLen]),
			Author:      string(blob[authorOff : authorOff+authorLen]),
			Description: string(blob[descOff : descOff+descLen]),
			BuildDate:   buildDate,
		}
	}

	return p, nil
}

// ReadByte returns the byte at a flat memory address by scanning loaded
// segments, or 0xFF if address falls in no segment (unmapped ROM, or any
// RAM address -- RAM segments carry no bytes on disk; a loader zero-fills
// them instead of calling ReadByte for that range).
func (p *Program) ReadByte(address uint32) byte {
	for _, s := range p.Segments {
		if s.Type == SegmentBss {
			continue
		}
		if address >= s.LoadAddress && address < s.LoadAddress+uint32(len(s.Data)) {
			return s.Data[address-s.LoadAddress]
		}
	}
	return 0xFF
}

// Checksum recomputes the CRC-32 over the concatenated bytes of all
// non-bss segments, in segment order, the same way Write does when
// populating Info.
func (p *Program) Checksum() uint32 {
	var buf bytes.Buffer
	for _, s := range p.Segments {
		if s.Type != SegmentBss {
			buf.Write(s.Data)
		}
	}
	return crc32.ChecksumIEEE(buf.Bytes())
}
