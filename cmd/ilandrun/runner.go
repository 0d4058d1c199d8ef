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

package main

import (
	"errors"
	"fmt"

	iland "github.com/iland-go/iland"
	"github.com/iland-go/iland/climate"
	"github.com/iland-go/iland/config"
	"github.com/iland-go/iland/simulation"
	"github.com/iland-go/iland/watercycle"
)

var errCancelled = errors.New("ilandrun: cancelled")

// waterParams translates the configuration file's water option group into
// the watercycle package's parameter struct.
func waterParams(w config.Water) watercycle.Params {
	return watercycle.Params{
		SoilDepth:                    w.SoilDepth,
		InterceptionStorageNeedle:    w.InterceptionStorageNeedle,
		InterceptionStorageBroadleaf: w.InterceptionStorageBroadleaf,
		AirDensity:                   w.AirDensity,
		SnowMeltTemperature:          w.SnowMeltTemperature,
		BoundaryLayerConductance:     w.BoundaryLayerConductance,
		LAIThresholdClosedStands:     w.LAIThresholdForClosedStands,
		UseSoilSaturation:            w.UseSoilSaturation,
	}
}

// buildLandscape tiles cfg's world rectangle into cfg.Geometry.RUCellSize
// resource units, each with a WaterCycle set up from the configured soil
// texture, and allocates the shared LIF and height grids. Tree and species
// population is a host-specific concern (project/XML loading is out of
// scope here); this binary demonstrates the wiring with an empty tree
// population, which still exercises every phase of simulation.RunYear.
func buildLandscape(cfg config.Config) ([]*iland.ResourceUnit, *iland.LightGrid, *iland.HeightGrid, error) {
	g := cfg.Geometry
	width := g.WorldRect.MaxX - g.WorldRect.MinX
	height := g.WorldRect.MaxY - g.WorldRect.MinY
	nx := int(width / g.RUCellSize)
	ny := int(height / g.RUCellSize)
	if nx <= 0 || ny <= 0 {
		return nil, nil, nil, fmt.Errorf("ilandrun: world rectangle too small for ru cell size %v", g.RUCellSize)
	}

	texture := watercycle.SoilTexture{Sand: cfg.Water.PctSand, Silt: cfg.Water.PctSilt, Clay: cfg.Water.PctClay}

	var rus []*iland.ResourceUnit
	id := 0
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			bounds := iland.Rect{
				Min: iland.Point{X: g.WorldRect.MinX + float64(ix)*g.RUCellSize, Y: g.WorldRect.MinY + float64(iy)*g.RUCellSize},
				Max: iland.Point{X: g.WorldRect.MinX + float64(ix+1)*g.RUCellSize, Y: g.WorldRect.MinY + float64(iy+1)*g.RUCellSize},
			}
			ru := iland.NewResourceUnit(id, bounds, ix, iy)
			wc, err := watercycle.Setup(texture, waterParams(cfg.Water))
			if err != nil {
				return nil, nil, nil, fmt.Errorf("ilandrun: RU %d: %w", id, err)
			}
			ru.Water = wc
			rus = append(rus, ru)
			id++
		}
	}

	lif := iland.NewLightGrid(g.WorldRect.MinX, g.WorldRect.MinY, nx*int(g.RUCellSize/g.LIFCellSize), ny*int(g.RUCellSize/g.LIFCellSize))
	hg := iland.NewHeightGrid(g.WorldRect.MinX, g.WorldRect.MinY, nx*int(g.RUCellSize/g.HeightCellSize), ny*int(g.RUCellSize/g.HeightCellSize))
	return rus, lif, hg, nil
}

// syntheticClimate returns a flat, deterministic climate.Table covering
// `years` non-leap years: a host with a real climate database wires its own
// climate.Table implementation instead (climate-DB ingestion is an
// external collaborator).
func syntheticClimate(years int) (climate.Table, error) {
	var days []climate.Day
	for y := 1; y <= years; y++ {
		for doy := 0; doy < 365; doy++ {
			month := doy/31 + 1
			if month > 12 {
				month = 12
			}
			days = append(days, climate.Day{
				Year: y, Month: month, Day: doy%28 + 1, DOY: doy,
				TMin: 2, TMax: 14, Precip: 2.5, Rad: 12, VPD: 0.8,
			})
		}
	}
	return climate.NewSliceTable(47.0, days)
}

func runYears(cfg config.Config, years int) error {
	rus, lif, hg, err := buildLandscape(cfg)
	if err != nil {
		return err
	}
	tbl, err := syntheticClimate(years)
	if err != nil {
		return err
	}
	if cfg.Climate.RandomSamplingEnabled && len(cfg.Climate.RandomSamplingList) > 0 {
		tbl = &climate.SampledTable{Base: tbl, Years: cfg.Climate.RandomSamplingList, FirstYear: 1}
	}
	if cfg.Climate.TemperatureShift != 0 || cfg.Climate.PrecipitationShift != 0 {
		factor := 1.0
		if cfg.Climate.PrecipitationShift != 0 {
			factor = cfg.Climate.PrecipitationShift
		}
		tbl = &climate.ShiftedTable{Base: tbl, TemperatureShift: cfg.Climate.TemperatureShift, PrecipFactor: factor}
	}
	sim := simulation.New(rus, lif, hg, nil, tbl, 1)
	sim.CO2Concentration = cfg.Climate.CO2Concentration
	sim.TemperatureTau = cfg.Numerics.TemperatureTau
	for y := 1; y <= years; y++ {
		if sim.Cancel.Requested() {
			return errCancelled
		}
		if err := sim.RunYear(y); err != nil {
			return err
		}
	}
	return nil
}
