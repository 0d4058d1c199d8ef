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

import "fmt"

// Classification constants for the dbh/hd-ratio lookup table. Grounded on
// the original StampContainer::getKey binning scheme: dbh classes are
// narrow below 10cm, widen between 10 and 20cm, and widen further above.
const (
	bhdClassWidth = 4
	bhdClassLow   = 4
	bhdClassCount = 70
	hdClassWidth  = 10
	hdClassLow    = 35
	hdClassCount  = 16
)

// stampItem records the parameters a stamp was registered under, independent
// of whether it also made it into the fast lookup grid.
type stampItem struct {
	stamp       *Stamp
	dbh         float32
	hd          float32
	crownRadius float32
}

// StampContainer holds every light-pattern stamp for one species: the dense
// writer stamps keyed by dbh/hd class, and the reader stamps keyed by crown
// radius. It answers the hot-path Stamp(dbh, height) lookup in O(1) via a
// dense lookup grid, falling back to the first registered stamp when the
// lookup cell is empty or the dbh lies outside the classified range.
type StampContainer struct {
	useLookup bool
	lookup    *Grid[*Stamp]
	stamps    []stampItem
	desc      string
}

// NewStampContainer builds an empty container with its lookup grid sized to
// the fixed dbh/hd-ratio classification scheme.
func NewStampContainer() *StampContainer {
	return &StampContainer{
		useLookup: true,
		lookup:    NewGrid[*Stamp](0, 0, 1, bhdClassCount, hdClassCount),
	}
}

// Description returns the free-text description stored alongside the stamps.
func (c *StampContainer) Description() string { return c.desc }

// SetDescription assigns the free-text description.
func (c *StampContainer) SetDescription(s string) { c.desc = s }

// Count returns the number of stamps registered, writer and reader combined.
func (c *StampContainer) Count() int { return len(c.stamps) }

// getKey decodes a (dbh, hd-ratio) pair into lookup-grid indices. dbh classes
// are 1cm wide from 4 to 9cm, 2cm wide from 10 to 18cm, and 4cm wide from
// 20cm upward; hd classes are a uniform 10-wide bucket starting at 35.
func getKey(dbh, hdValue float32) (dbhClass, hdClass int) {
	hdClass = int(hdValue-hdClassLow) / hdClassWidth
	switch {
	case dbh < 10:
		dbhClass = int(dbh - 4)
		if dbhClass < 0 {
			dbhClass = 0
		}
	case dbh < 20:
		dbhClass = 6 + int((dbh-10)/2)
	default:
		dbhClass = 11 + int((dbh-20)/4)
	}
	return dbhClass, hdClass
}

// AddStamp registers a writer stamp for the given dbh (cm) and hd-ratio
// (height/dbh * 100). crownRadius is metres.
func (c *StampContainer) AddStamp(stamp *Stamp, dbh, hdValue, crownRadius float32) error {
	dbhClass, hdClass := getKey(dbh, hdValue)
	return c.addStamp(stamp, dbhClass, hdClass, crownRadius, dbh, hdValue)
}

func (c *StampContainer) addStamp(stamp *Stamp, dbhClass, hdClass int, crownRadius, dbh, hdValue float32) error {
	if c.useLookup {
		if dbhClass < 0 || dbhClass >= bhdClassCount || hdClass < 0 || hdClass >= hdClassCount {
			return fmt.Errorf("iland: stamp out of range dbh=%v hd=%v", dbh, hdValue)
		}
		c.lookup.Set(dbhClass, hdClass, stamp)
	}
	stamp.dbh = dbh
	stamp.hd = hdValue
	stamp.crownRadius = crownRadius
	c.stamps = append(c.stamps, stampItem{stamp: stamp, dbh: dbh, hd: hdValue, crownRadius: crownRadius})
	return nil
}

// AddReaderStamp registers a reader stamp, keyed only by crown radius. Per
// the original encoding trick, readers share the writer lookup grid: the
// integer part of the radius becomes the dbh-class index and the first
// decimal digit of the radius (times 10) becomes the hd-class index.
func (c *StampContainer) AddReaderStamp(stamp *Stamp, crownRadius float32) error {
	dbhClass, hdClass := readerKey(crownRadius)
	stamp.crownRadius = crownRadius
	return c.addStamp(stamp, dbhClass, hdClass, crownRadius, 0, 0)
}

func readerKey(crownRadius float32) (dbhClass, hdClass int) {
	rest := mod32(crownRadius, 1) + 0.0001
	hdClass = int(rest * 10)
	if hdClass >= hdClassCount {
		hdClass = hdClassCount - 1
	}
	dbhClass = int(crownRadius)
	return dbhClass, hdClass
}

func mod32(x, y float32) float32 {
	n := int(x / y)
	return x - float32(n)*y
}

// ReaderStamp returns the reader stamp registered for crownRadius, or nil if
// none was found at that exact bucket.
func (c *StampContainer) ReaderStamp(crownRadius float32) *Stamp {
	dbhClass, hdClass := readerKey(crownRadius)
	if dbhClass < 0 || dbhClass >= bhdClassCount || hdClass < 0 || hdClass >= hdClassCount {
		return nil
	}
	return c.lookup.At(dbhClass, hdClass)
}

// Stamp returns the writer stamp for a tree of the given dbh (cm) and height
// (m). It uses the dense lookup grid when possible, clamping to the nearest
// registered hd-ratio when a cell falls outside the populated hd range, and
// otherwise falls back to the first registered stamp.
func (c *StampContainer) Stamp(dbhCm, heightM float32) *Stamp {
	hdValue := 100 * heightM / dbhCm
	dbhClass, hdClass := getKey(dbhCm, hdValue)

	if dbhClass >= 0 && dbhClass < bhdClassCount && hdClass >= 0 && hdClass < hdClassCount {
		if s := c.lookup.At(dbhClass, hdClass); s != nil {
			return s
		}
		if len(c.stamps) > 0 {
			return c.stamps[0].stamp
		}
		return nil
	}

	if dbhClass >= 0 && dbhClass < bhdClassCount {
		if hdClass >= hdClassCount {
			return c.lookup.At(dbhClass, hdClassCount-1)
		}
		return c.lookup.At(dbhClass, 0)
	}
	if len(c.stamps) > 0 {
		return c.stamps[0].stamp
	}
	return nil
}

// finalizeSetup fills the gaps in the lookup grid left by sparse stamp
// registration: for each dbh class, the lowest populated hd cell is
// propagated downward, and the highest populated hd cell is propagated
// upward, leaving no nil cells across the populated dbh range.
func (c *StampContainer) finalizeSetup() {
	if !c.useLookup {
		return
	}
	for b := 0; b < bhdClassCount; b++ {
		var s *Stamp
		h := 0
		for ; h < hdClassCount; h++ {
			if v := c.lookup.At(b, h); v != nil {
				s = v
				for fill := 0; fill < h; fill++ {
					c.lookup.Set(b, fill, s)
				}
				break
			}
		}
		for ; h < hdClassCount; h++ {
			if c.lookup.At(b, h) == nil {
				break
			}
			s = c.lookup.At(b, h)
		}
		for ; h < hdClassCount; h++ {
			if v := c.lookup.At(b, h); v != nil {
				s = v
			} else {
				c.lookup.Set(b, h, s)
			}
		}
	}
}

// AttachReaderStamps pairs every writer stamp in c with the reader stamp in
// source whose crown radius matches, so that light-read operations never
// need to consult a StampContainer other than the one owning the tree.
func (c *StampContainer) AttachReaderStamps(source *StampContainer) (found, total int) {
	for _, si := range c.stamps {
		r := source.ReaderStamp(si.crownRadius)
		si.stamp.reader = r
		total++
		if r != nil {
			found++
		}
	}
	return found, total
}

// Invert replaces every value v in every registered stamp's data with 1-v,
// turning an additive stamp into a multiplicative dimming factor or back.
func (c *StampContainer) Invert() {
	for _, si := range c.stamps {
		d := si.stamp.data
		for i := range d {
			d[i] = 1 - d[i]
		}
	}
}

// Load registers every stamp of a stamp library (for example, one decoded by
// ReadStampFile), finalizing the lookup grid afterward. A writer
// stamp is identified by a nonzero dbh field; a reader stamp by dbh == 0.
func (c *StampContainer) Load(stamps []*Stamp, description string) error {
	c.desc = description
	for _, s := range stamps {
		var err error
		if s.dbh > 0 {
			err = c.AddStamp(s, s.dbh, s.hd, s.crownRadius)
		} else {
			err = c.AddReaderStamp(s, s.crownRadius)
		}
		if err != nil {
			return err
		}
	}
	c.finalizeSetup()
	return nil
}

// Stamps returns every registered stamp, writer and reader alike, in
// registration order.
func (c *StampContainer) Stamps() []*Stamp {
	out := make([]*Stamp, len(c.stamps))
	for i, si := range c.stamps {
		out[i] = si.stamp
	}
	return out
}
