package game

import (
	"io"

	"github.com/pthm-cable/racers/config"
)

// Speed limits for steps per update.
const (
	MinStepsPerUpdate = 1
	MaxStepsPerUpdate = 10
)

// Options configures a Game.
type Options struct {
	Config *config.Config // nil = config.Cfg()

	Seed           int64
	OutputDir      string // CSV logs and config snapshot, empty = off
	ArchivePath    string // SQLite champion archive, empty = in-memory
	ResumePath     string // SQLite archive to seed the first generation from
	Headless       bool
	StepsPerUpdate int

	// LapTable receives the leaderboard table after every lap, nil = off.
	LapTable io.Writer
}
