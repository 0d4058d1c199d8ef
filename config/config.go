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

// Package config models the on-disk configuration surface: the four
// option groups (geometry, water, climate, numerics) a host binary loads
// before constructing a simulation.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Rect is a metric bounding rectangle in TOML-friendly flat fields.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Geometry is the model-geometry option group.
type Geometry struct {
	WorldRect      Rect    `toml:"world_rectangle"`
	LIFCellSize    float64 `toml:"lif_cell_size"`
	RUCellSize     float64 `toml:"ru_cell_size"`
	HeightCellSize float64 `toml:"height_cell_size"`
}

// Water is the water-cycle option group.
type Water struct {
	SoilDepth                    float64 `toml:"soil_depth"`
	PctSand                      float64 `toml:"pct_sand"`
	PctSilt                      float64 `toml:"pct_silt"`
	PctClay                      float64 `toml:"pct_clay"`
	UseSoilSaturation            bool    `toml:"use_soil_saturation"`
	InterceptionStorageNeedle    float64 `toml:"interception_storage_needle"`
	InterceptionStorageBroadleaf float64 `toml:"interception_storage_broadleaf"`
	SnowMeltTemperature          float64 `toml:"snow_melt_temperature"`
	LAIThresholdForClosedStands  float64 `toml:"lai_threshold_for_closed_stands"`
	BoundaryLayerConductance     float64 `toml:"boundary_layer_conductance"`
	AirDensity                   float64 `toml:"air_density"`
}

// Climate is the climate option group.
type Climate struct {
	TableName             string  `toml:"table_name"`
	BatchYears            int     `toml:"batch_years"`
	RandomSamplingEnabled bool    `toml:"random_sampling_enabled"`
	RandomSamplingList    []int   `toml:"random_sampling_list"`
	TemperatureShift      float64 `toml:"temperature_shift"`
	PrecipitationShift    float64 `toml:"precipitation_shift"`
	CO2Concentration      float64 `toml:"co2_concentration"`
}

// Numerics is the numerics option group.
type Numerics struct {
	TemperatureTau float64 `toml:"temperature_tau"`
}

// Config is the full on-disk configuration surface.
type Config struct {
	Geometry Geometry `toml:"geometry"`
	Water    Water    `toml:"water"`
	Climate  Climate  `toml:"climate"`
	Numerics Numerics `toml:"numerics"`
}

// Default returns a Config populated with standard reference values
// (2m LIF cells, 100m RUs, 10m height cells) and otherwise conservative
// defaults a host can override from a file.
func Default() Config {
	return Config{
		Geometry: Geometry{
			LIFCellSize:    2,
			RUCellSize:     100,
			HeightCellSize: 10,
		},
		Water: Water{
			SoilDepth:                    1000,
			InterceptionStorageNeedle:    4,
			InterceptionStorageBroadleaf: 2,
			SnowMeltTemperature:          0,
			LAIThresholdForClosedStands:  3,
			BoundaryLayerConductance:     0.2,
			AirDensity:                   1.2,
		},
		Climate: Climate{BatchYears: 1},
	}
}

// Load reads and decodes a TOML configuration file, starting from Default
// and overriding with whatever fields the file sets, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("iland/config: loading %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write serializes cfg as TOML to path, used by tests and by a host's
// "write out the effective configuration" diagnostics.
func Write(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("iland/config: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("iland/config: writing %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration-error class: soil percentages must sum
// to 100±0.01, cell sizes must be positive, and the world rectangle must
// not be degenerate.
func (c Config) Validate() error {
	sum := c.Water.PctSand + c.Water.PctSilt + c.Water.PctClay
	if sum < 99.99 || sum > 100.01 {
		return fmt.Errorf("iland/config: soil percentages sum to %v, want 100", sum)
	}
	if c.Geometry.LIFCellSize <= 0 || c.Geometry.RUCellSize <= 0 || c.Geometry.HeightCellSize <= 0 {
		return fmt.Errorf("iland/config: cell sizes must be positive: lif=%v ru=%v height=%v",
			c.Geometry.LIFCellSize, c.Geometry.RUCellSize, c.Geometry.HeightCellSize)
	}
	if c.Geometry.WorldRect.MaxX <= c.Geometry.WorldRect.MinX || c.Geometry.WorldRect.MaxY <= c.Geometry.WorldRect.MinY {
		return fmt.Errorf("iland/config: degenerate world rectangle %+v", c.Geometry.WorldRect)
	}
	if c.Water.SoilDepth <= 0 {
		return fmt.Errorf("iland/config: soil depth must be positive, got %v", c.Water.SoilDepth)
	}
	return nil
}
