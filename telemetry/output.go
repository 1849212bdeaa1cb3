package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/racers/config"
)

// FitnessRecord is one row of the two-column generation log.
type FitnessRecord struct {
	Generation  int `csv:"generation"`
	BestFitness int `csv:"best_fitness"`
}

// LapRecord is one completed lap.
type LapRecord struct {
	Car        int `csv:"car"`
	Generation int `csv:"generation"`
	LapTime    int `csv:"lap_time"`
	Place      int `csv:"place"` // 1-based leaderboard place, 0 if it did not place
}

// csvLog is an append-only CSV file that writes its header once.
type csvLog struct {
	file          *os.File
	headerWritten bool
	headerless    bool
}

func openCSVLog(dir, name string, headerless bool) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{file: f, headerless: headerless}, nil
}

func (l *csvLog) write(records any) error {
	if l.headerless || l.headerWritten {
		return gocsv.MarshalWithoutHeaders(records, l.file)
	}
	if err := gocsv.Marshal(records, l.file); err != nil {
		return err
	}
	l.headerWritten = true
	return nil
}

func (l *csvLog) close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir         string
	fitness     *csvLog
	laps        *csvLog
	generations *csvLog
	perf        *csvLog
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		dst        **csvLog
		name       string
		headerless bool
	}{
		{&om.fitness, "fitness.csv", true},
		{&om.laps, "laps.csv", false},
		{&om.generations, "generations.csv", false},
		{&om.perf, "perf.csv", false},
	}
	for _, f := range files {
		l, err := openCSVLog(dir, f.name, f.headerless)
		if err != nil {
			om.Close()
			return nil, err
		}
		*f.dst = l
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// LogGeneration appends a generation,best_fitness row to fitness.csv.
func (om *OutputManager) LogGeneration(generation, bestFitness int) error {
	if om == nil {
		return nil
	}
	records := []FitnessRecord{{Generation: generation, BestFitness: bestFitness}}
	if err := om.fitness.write(records); err != nil {
		return fmt.Errorf("writing fitness: %w", err)
	}
	return nil
}

// WriteLap writes a lap record to laps.csv.
func (om *OutputManager) WriteLap(lap LapRecord) error {
	if om == nil {
		return nil
	}
	if err := om.laps.write([]LapRecord{lap}); err != nil {
		return fmt.Errorf("writing lap: %w", err)
	}
	return nil
}

// WriteGeneration writes a generation summary to generations.csv.
func (om *OutputManager) WriteGeneration(stats GenerationStats) error {
	if om == nil {
		return nil
	}
	if err := om.generations.write([]GenerationStats{stats}); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, generation int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(generation)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, l := range []*csvLog{om.fitness, om.laps, om.generations, om.perf} {
		if err := l.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
