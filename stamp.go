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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// stampMagic and stampVersion identify the binary stamp-library file format.
// Grounded on the original iLand StampContainer::save/load format
// (magic 0xFEED0001, u16 version 100).
const (
	stampMagic   uint32 = 0xFEED0001
	stampVersion uint16 = 100
)

// Stamp is a square, odd-or-even-sized dense pattern of light-influence
// values. Offset gives the index of the tree's trunk within the pattern
// (always the geometric center).
type Stamp struct {
	size        int // dense side length s
	offset      int // s/2, center pixel index along one axis
	dbh         float32
	hd          float32
	crownRadius float32
	data        []float32 // row-major, size*size values

	// reader is the stamp used to read the LIF grid for a tree with this
	// writer stamp's footprint. nil until attached by StampContainer
	// finalisation (§4.2 writer-to-reader pairing).
	reader *Stamp
}

// NewStamp allocates a square stamp of the given dense side length.
// offset = (size-1)/2 for odd sizes and size/2 for even sizes.
func NewStamp(size int) *Stamp {
	if size <= 0 {
		panic(fmt.Sprintf("iland: invalid stamp size %d", size))
	}
	offset := size / 2
	if size%2 == 1 {
		offset = (size - 1) / 2
	}
	return &Stamp{
		size:   size,
		offset: offset,
		data:   make([]float32, size*size),
	}
}

// Size returns the dense side length of the stamp.
func (s *Stamp) Size() int { return s.size }

// Offset returns the index of the center pixel along one axis.
func (s *Stamp) Offset() int { return s.offset }

// DBH returns the diameter (cm) this stamp was built for; 0 for a reader stamp.
func (s *Stamp) DBH() float32 { return s.dbh }

// HDRatio returns the height/dbh ratio this stamp was built for.
func (s *Stamp) HDRatio() float32 { return s.hd }

// CrownRadius returns the crown radius (m) this stamp was built for.
func (s *Stamp) CrownRadius() float32 { return s.crownRadius }

// IsReader reports whether this stamp is a reader stamp (dbh == 0).
func (s *Stamp) IsReader() bool { return s.dbh == 0 }

// Reader returns the paired reader stamp, or nil if none has been attached.
func (s *Stamp) Reader() *Stamp { return s.reader }

// At returns the value at local stamp coordinates (x, y), where (0,0) is the
// top-left of the dense pattern and (offset, offset) is the tree center.
func (s *Stamp) At(x, y int) float32 {
	return s.data[y*s.size+x]
}

// SetAt assigns the value at local stamp coordinates (x, y).
func (s *Stamp) SetAt(x, y int, v float32) {
	s.data[y*s.size+x] = v
}

// Data returns the flat, row-major backing slice.
func (s *Stamp) Data() []float32 { return s.data }

// WriteStampFile writes a library of stamps (writer and/or reader) to w in
// a binary format: magic, version, count, description, then one record per
// stamp. Endianness is fixed at little-endian for the whole file.
func WriteStampFile(w io.Writer, description string, stamps []*Stamp) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, stampMagic); err != nil {
		return fmt.Errorf("iland: writing stamp file magic: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, stampVersion); err != nil {
		return fmt.Errorf("iland: writing stamp file version: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(len(stamps))); err != nil {
		return fmt.Errorf("iland: writing stamp count: %w", err)
	}
	if err := writeString(bw, description); err != nil {
		return fmt.Errorf("iland: writing stamp file description: %w", err)
	}
	for _, s := range stamps {
		if err := writeStampRecord(bw, s); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeStampRecord(w io.Writer, s *Stamp) error {
	fields := []interface{}{
		int32(s.size),
		s.dbh,
		s.hd,
		s.crownRadius,
		int32(s.offset),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("iland: writing stamp record: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, s.data); err != nil {
		return fmt.Errorf("iland: writing stamp data: %w", err)
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n < 0 || n > 1<<20 {
		return "", fmt.Errorf("iland: implausible string length %d in stamp file", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadStampFile reads a binary stamp-library file in the format written by
// WriteStampFile. It returns the description string and the stamps in file
// order. An invalid magic or a zero count is a fatal parse error.
func ReadStampFile(r io.Reader) (description string, stamps []*Stamp, err error) {
	br := bufio.NewReader(r)
	var magic uint32
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return "", nil, fmt.Errorf("iland: reading stamp file magic: %w", err)
	}
	if magic != stampMagic {
		return "", nil, fmt.Errorf("iland: invalid stamp file magic 0x%08X", magic)
	}
	var version uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return "", nil, fmt.Errorf("iland: reading stamp file version: %w", err)
	}
	if version != stampVersion {
		return "", nil, fmt.Errorf("iland: unsupported stamp file version %d", version)
	}
	var count int32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return "", nil, fmt.Errorf("iland: reading stamp count: %w", err)
	}
	description, err = readString(br)
	if err != nil {
		return "", nil, fmt.Errorf("iland: reading stamp file description: %w", err)
	}
	if count == 0 {
		return "", nil, fmt.Errorf("iland: no stamps loaded")
	}
	stamps = make([]*Stamp, 0, count)
	for i := int32(0); i < count; i++ {
		s, err := readStampRecord(br)
		if err != nil {
			return "", nil, fmt.Errorf("iland: reading stamp record %d: %w", i, err)
		}
		stamps = append(stamps, s)
	}
	return description, stamps, nil
}

func readStampRecord(r io.Reader) (*Stamp, error) {
	var size int32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	s := NewStamp(int(size))
	if err := binary.Read(r, binary.LittleEndian, &s.dbh); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &s.hd); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &s.crownRadius); err != nil {
		return nil, err
	}
	var offset int32
	if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
		return nil, err
	}
	s.offset = int(offset)
	if err := binary.Read(r, binary.LittleEndian, s.data); err != nil {
		return nil, err
	}
	return s, nil
}
