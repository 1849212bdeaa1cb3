package telemetry

import (
	"io"
	"log/slog"
)

// LapLog records completed laps on a leaderboard, appends them to laps.csv
// and optionally prints the board after every lap.
type LapLog struct {
	Board *Leaderboard
	Out   *OutputManager
	Table io.Writer // nil disables the printed table
	Err   error     // first write error, if any
}

// RecordLap implements the lap collaborator used by the population.
func (l *LapLog) RecordLap(car, generation, lapTime int) int {
	place := l.Board.RecordLap(car, generation, lapTime)

	slog.Info("lap_completed",
		"car", car,
		"generation", generation,
		"lap_time", lapTime,
		"place", place+1,
	)

	if err := l.Out.WriteLap(LapRecord{
		Car:        car,
		Generation: generation,
		LapTime:    lapTime,
		Place:      place + 1,
	}); err != nil && l.Err == nil {
		l.Err = err
	}

	if l.Table != nil {
		if err := l.Board.WriteTable(l.Table); err != nil && l.Err == nil {
			l.Err = err
		}
	}
	return place
}
