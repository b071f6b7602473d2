package program

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func sampleProgram() *Program {
	return &Program{
		EntryPoint:   0x1000,
		StackPointer: DefaultStackPointer,
		Segments: []Segment{
			{LoadAddress: 0x1000, MemorySize: 4, FileSize: 4, Type: SegmentCode, Flags: SegmentAlloc | SegmentExec, Data: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
			{LoadAddress: 0x2000, MemorySize: 2, FileSize: 2, Type: SegmentData, Flags: SegmentAlloc | SegmentWrite, Data: []byte{0x01, 0x02}},
			{LoadAddress: 0x80000000, MemorySize: 256, Type: SegmentBss, Flags: SegmentAlloc | SegmentWrite},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	orig := sampleProgram()
	buf, err := orig.Write()
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if got.EntryPoint != orig.EntryPoint || got.StackPointer != orig.StackPointer {
		t.Errorf("EntryPoint/StackPointer mismatch: got %+v", got)
	}
	if len(got.Segments) != len(orig.Segments) {
		t.Fatalf("Segments count = %d, want %d", len(got.Segments), len(orig.Segments))
	}
	for i, s := range orig.Segments {
		gs := got.Segments[i]
		if gs.LoadAddress != s.LoadAddress || gs.Type != s.Type || gs.Flags != s.Flags {
			t.Errorf("Segments[%d] = %+v, want %+v", i, gs, s)
		}
		if s.Type == SegmentBss {
			if len(gs.Data) != 0 {
				t.Errorf("bss segment %d carries file data: %v", i, gs.Data)
			}
		} else if !bytes.Equal(gs.Data, s.Data) {
			t.Errorf("Segments[%d].Data = %v, want %v", i, gs.Data, s.Data)
		}
	}
}

func TestProgramInfoRoundTrip(t *testing.T) {
	orig := sampleProgram()
	orig.Info = &Info{
		Name:        "firmware",
		Version:     "1.0.0",
		Author:      "g10",
		Description: "sample build",
		BuildDate:   1234567890,
	}

	buf, err := orig.Write()
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Flags&FlagHasInfo == 0 {
		t.Fatal("FlagHasInfo not set")
	}
	if got.Info == nil {
		t.Fatal("Info not decoded")
	}
	if *got.Info != *orig.Info {
		t.Errorf("Info = %+v, want %+v", *got.Info, *orig.Info)
	}
}

func TestReadByte(t *testing.T) {
	p := sampleProgram()
	if b := p.ReadByte(0x1000); b != 0xDE {
		t.Errorf("ReadByte(0x1000) = %#x, want 0xde", b)
	}
	if b := p.ReadByte(0x1003); b != 0xEF {
		t.Errorf("ReadByte(0x1003) = %#x, want 0xef", b)
	}
	if b := p.ReadByte(0x9999); b != 0xFF {
		t.Errorf("ReadByte(unmapped) = %#x, want 0xff", b)
	}
	if b := p.ReadByte(0x80000000); b != 0xFF {
		t.Errorf("ReadByte(bss) = %#x, want 0xff (not materialized on disk)", b)
	}
}

func TestChecksumMatchesInfoBlock(t *testing.T) {
	p := sampleProgram()
	want := p.Checksum()
	p.Info = &Info{Name: "x"}
	buf, err := p.Write()
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	_ = got
	infoOff := binary.LittleEndian.Uint32(buf[24:28])
	if stored := binary.LittleEndian.Uint32(buf[infoOff+36:]); stored != want {
		t.Errorf("info block checksum = %#x, want %#x", stored, want)
	}
	if want != p.Checksum() {
		t.Errorf("Checksum changed across calls: %#x vs %#x", want, p.Checksum())
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := make([]byte, headerSize)
	if _, err := Read(buf); err == nil {
		t.Error("expected error for bad magic, got nil")
	}
}

func TestReadRejectsTruncated(t *testing.T) {
	if _, err := Read(make([]byte, headerSize/2)); err == nil {
		t.Error("expected error for truncated header, got nil")
	}
}
