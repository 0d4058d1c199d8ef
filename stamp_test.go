/*
Copyright (C) the iland-go developers.
This file is part of iland-go.

iland-go is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

iland-go is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with iland-go.  If not, see <http://www.gnu.org/licenses/>.
*/

package iland

import (
	"bytes"
	"testing"
)

func TestStampOffsetOddEven(t *testing.T) {
	odd := NewStamp(5)
	if odd.Offset() != 2 {
		t.Fatalf("odd offset = %d, want 2", odd.Offset())
	}
	even := NewStamp(4)
	if even.Offset() != 2 {
		t.Fatalf("even offset = %d, want 2", even.Offset())
	}
}

func TestStampAtSetAt(t *testing.T) {
	s := NewStamp(3)
	s.SetAt(1, 1, 0.75)
	if v := s.At(1, 1); v != 0.75 {
		t.Fatalf("At(1,1) = %v, want 0.75", v)
	}
	if v := s.At(0, 0); v != 0 {
		t.Fatalf("At(0,0) = %v, want 0 (zero value)", v)
	}
}

func TestStampFileRoundTrip(t *testing.T) {
	writer := NewStamp(3)
	writer.dbh = 20
	writer.hd = 80
	writer.crownRadius = 2.5
	for i := range writer.data {
		writer.data[i] = float32(i) * 0.1
	}

	reader := NewStamp(5)
	reader.crownRadius = 2.5

	var buf bytes.Buffer
	if err := WriteStampFile(&buf, "test library", []*Stamp{writer, reader}); err != nil {
		t.Fatalf("WriteStampFile: %v", err)
	}

	desc, stamps, err := ReadStampFile(&buf)
	if err != nil {
		t.Fatalf("ReadStampFile: %v", err)
	}
	if desc != "test library" {
		t.Fatalf("description = %q, want %q", desc, "test library")
	}
	if len(stamps) != 2 {
		t.Fatalf("stamp count = %d, want 2", len(stamps))
	}

	got := stamps[0]
	if got.Size() != 3 || got.DBH() != 20 || got.HDRatio() != 80 || got.CrownRadius() != 2.5 {
		t.Fatalf("writer stamp mismatch after round trip: %+v", got)
	}
	for i := range got.data {
		if got.data[i] != writer.data[i] {
			t.Fatalf("data[%d] = %v, want %v", i, got.data[i], writer.data[i])
		}
	}

	if stamps[1].Size() != 5 || !stamps[1].IsReader() {
		t.Fatalf("reader stamp mismatch after round trip: %+v", stamps[1])
	}
}

func TestReadStampFileBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0})
	if _, _, err := ReadStampFile(&buf); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestReadStampFileEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStampFile(&buf, "empty", nil); err != nil {
		t.Fatalf("WriteStampFile: %v", err)
	}
	if _, _, err := ReadStampFile(&buf); err == nil {
		t.Fatal("expected error for zero-count stamp file")
	}
}
