// Package systems contains the per-car simulation systems: ray sensing,
// controller inputs, physics integration and fitness scoring.
package systems

import (
	"github.com/pthm-cable/racers/config"
)

// CarParams holds vehicle dynamics constants.
type CarParams struct {
	HitboxW, HitboxH float32
	MaxSpeed         float32
	MaxAccel         float32
	SteerWeight      float32
	SteerBlend       float32
	BrakingFactor    float32
	Friction         float32
	LateralFriction  float32
}

// SensorParams holds ray sensor constants.
type SensorParams struct {
	NumRays     int
	FOV         float32 // degrees
	Reference   float32 // normalisation length and no-hit distance
	ReachFactor float32
}

// FitnessParams holds scoring constants.
type FitnessParams struct {
	SectorBonus           int
	LapBonus              int
	AverageSpeedFactor    int
	SectorSpeedMultiplier int
	BackSectorPunishment  int
	BackLapPunishment     int
	CrashPunishment       int
}

// Params bundles everything the per-car systems need.
type Params struct {
	Car     CarParams
	Sensors SensorParams
	Fitness FitnessParams
	ArenaW  float32
	ArenaH  float32
}

// NumInputs returns the controller input width for these params.
func (p Params) NumInputs() int {
	return p.Sensors.NumRays + 6
}

// NewParams extracts system parameters from a loaded config.
func NewParams(cfg *config.Config) Params {
	return Params{
		Car: CarParams{
			HitboxW:         float32(cfg.Car.HitboxWidth),
			HitboxH:         float32(cfg.Car.HitboxHeight),
			MaxSpeed:        float32(cfg.Car.MaxSpeed),
			MaxAccel:        float32(cfg.Car.MaxAccel),
			SteerWeight:     float32(cfg.Car.SteerWeight),
			SteerBlend:      float32(cfg.Car.SteerBlend),
			BrakingFactor:   float32(cfg.Car.BrakingFactor),
			Friction:        float32(cfg.Car.Friction),
			LateralFriction: float32(cfg.Car.LateralFriction),
		},
		Sensors: SensorParams{
			NumRays:     cfg.Sensors.NumRays,
			FOV:         float32(cfg.Sensors.FieldOfView),
			Reference:   float32(cfg.Sensors.ReferenceLength),
			ReachFactor: float32(cfg.Sensors.ReachFactor),
		},
		Fitness: FitnessParams{
			SectorBonus:           cfg.Fitness.SectorBonus,
			LapBonus:              cfg.Fitness.LapBonus,
			AverageSpeedFactor:    cfg.Fitness.AverageSpeedFactor,
			SectorSpeedMultiplier: cfg.Fitness.SectorSpeedMultiplier,
			BackSectorPunishment:  cfg.Fitness.BackSectorPunishment,
			BackLapPunishment:     cfg.Fitness.BackLapPunishment,
			CrashPunishment:       cfg.Fitness.CrashPunishment,
		},
		ArenaW: cfg.Derived.ArenaW32,
		ArenaH: cfg.Derived.ArenaH32,
	}
}
