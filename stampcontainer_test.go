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

import "testing"

func newTestStamp(dbh, hd, crownRadius float32) *Stamp {
	s := NewStamp(3)
	s.dbh = dbh
	s.hd = hd
	s.crownRadius = crownRadius
	return s
}

func TestGetKeyBinning(t *testing.T) {
	cases := []struct {
		dbh, hd       float32
		wantDbh       int
		wantHdAtLeast int
	}{
		{4, 35, 0, 0},
		{8, 35, 4, 0},
		{10, 35, 6, 0},
		{18, 35, 10, 0},
		{20, 35, 11, 0},
		{24, 35, 12, 0},
	}
	for _, c := range cases {
		dbhClass, hdClass := getKey(c.dbh, c.hd)
		if dbhClass != c.wantDbh {
			t.Errorf("getKey(%v,%v) dbhClass = %d, want %d", c.dbh, c.hd, dbhClass, c.wantDbh)
		}
		if hdClass < c.wantHdAtLeast {
			t.Errorf("getKey(%v,%v) hdClass = %d, want >= %d", c.dbh, c.hd, hdClass, c.wantHdAtLeast)
		}
	}
}

func TestStampContainerAddAndLookup(t *testing.T) {
	c := NewStampContainer()
	s := newTestStamp(20, 80, 2.5)
	if err := c.AddStamp(s, 20, 80, 2.5); err != nil {
		t.Fatalf("AddStamp: %v", err)
	}
	c.finalizeSetup()

	got := c.Stamp(20, 16) // hd = 100*16/20 = 80
	if got != s {
		t.Fatalf("Stamp(20,16) did not return the registered stamp")
	}
}

func TestStampContainerFinalizeFillsGaps(t *testing.T) {
	c := NewStampContainer()
	low := newTestStamp(20, 40, 2.0)
	high := newTestStamp(20, 180, 4.0)
	if err := c.AddStamp(low, 20, 40, 2.0); err != nil {
		t.Fatalf("AddStamp low: %v", err)
	}
	if err := c.AddStamp(high, 20, 180, 4.0); err != nil {
		t.Fatalf("AddStamp high: %v", err)
	}
	c.finalizeSetup()

	dbhClass, _ := getKey(20, 40)
	for h := 0; h < hdClassCount; h++ {
		if c.lookup.At(dbhClass, h) == nil {
			t.Fatalf("cell (%d,%d) left nil after finalizeSetup", dbhClass, h)
		}
	}
}

func TestStampContainerReaderRoundTrip(t *testing.T) {
	c := NewStampContainer()
	reader := NewStamp(7)
	if err := c.AddReaderStamp(reader, 3.4); err != nil {
		t.Fatalf("AddReaderStamp: %v", err)
	}
	got := c.ReaderStamp(3.4)
	if got != reader {
		t.Fatalf("ReaderStamp(3.4) did not return the registered reader stamp")
	}
}

func TestAttachReaderStamps(t *testing.T) {
	writers := NewStampContainer()
	w := newTestStamp(20, 80, 2.5)
	if err := writers.AddStamp(w, 20, 80, 2.5); err != nil {
		t.Fatalf("AddStamp: %v", err)
	}

	readers := NewStampContainer()
	r := NewStamp(9)
	if err := readers.AddReaderStamp(r, 2.5); err != nil {
		t.Fatalf("AddReaderStamp: %v", err)
	}

	found, total := writers.AttachReaderStamps(readers)
	if found != 1 || total != 1 {
		t.Fatalf("AttachReaderStamps = (%d,%d), want (1,1)", found, total)
	}
	if w.Reader() != r {
		t.Fatal("writer stamp was not attached to the matching reader stamp")
	}
}

func TestStampContainerInvert(t *testing.T) {
	c := NewStampContainer()
	s := newTestStamp(20, 80, 2.5)
	s.SetAt(0, 0, 0.3)
	if err := c.AddStamp(s, 20, 80, 2.5); err != nil {
		t.Fatalf("AddStamp: %v", err)
	}
	c.Invert()
	if v := s.At(0, 0); v < 0.69999 || v > 0.70001 {
		t.Fatalf("inverted value = %v, want ~0.7", v)
	}
}

func TestStampContainerOutOfRangeRejected(t *testing.T) {
	c := NewStampContainer()
	s := NewStamp(3)
	if err := c.AddStamp(s, 300, 35, 1); err == nil {
		t.Fatal("expected error for dbh/hd classifying outside the lookup grid")
	}
}
