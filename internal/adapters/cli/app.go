package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/devbush/batchinfer/internal/adapters/csvoutput"
	"github.com/devbush/batchinfer/internal/adapters/csvsource"
	"github.com/devbush/batchinfer/internal/adapters/httpmodel"
	"github.com/devbush/batchinfer/internal/adapters/lexicon"
	"github.com/devbush/batchinfer/internal/adapters/predcache"
	"github.com/devbush/batchinfer/internal/adapters/scorecmd"
	"github.com/devbush/batchinfer/internal/adapters/sqlite"
	"github.com/devbush/batchinfer/internal/adapters/tracking"
	"github.com/devbush/batchinfer/internal/application"
	"github.com/devbush/batchinfer/internal/config"
	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/logging"
	"github.com/devbush/batchinfer/internal/ports"
)

// App holds all application dependencies
type App struct {
	Config *config.Config
	Logger *zap.Logger
	FS     afero.Fs

	closers []io.Closer
}

// NewApp loads configuration from path and the environment and builds the logger
func NewApp(path string, lookup func(string) (string, bool)) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return &App{Config: cfg, FS: afero.NewOsFs()}, nil
}

// Init validates the configuration and creates the logger. It runs after
// command-line flags have been applied.
func (a *App) Init() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(a.Config.Logging.Level, a.Config.Logging.Format)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	a.Logger = logger
	return nil
}

// Close releases resources opened while wiring
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil && a.Logger != nil {
			a.Logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// Settings returns the run settings echoed into snapshots
func (a *App) Settings() domain.RunSettings {
	c := a.Config
	return domain.RunSettings{
		InputCSV:    c.Input.Path,
		OutputCSV:   c.Output.Path,
		TextCol:     c.Input.TextCol,
		IDCol:       c.Input.IDCol,
		GroupCol:    c.Input.GroupCol,
		DatasetType: domain.DatasetNameFromPath(c.Input.Path),
		ModelName:   c.Model.Name,
		Backend:     c.Model.Backend,
		BatchSize:   c.Model.BatchSize,
		MaxLen:      c.Model.MaxLen,
		MaxRows:     c.Input.MaxRows,
	}
}

// RunService wires a run service from the configuration. extra publishers
// receive every snapshot alongside the live metrics file.
func (a *App) RunService(extra ...ports.SnapshotPublisher) (*application.RunService, error) {
	c := a.Config

	predictor, err := a.Predictor()
	if err != nil {
		return nil, err
	}

	source := csvsource.NewOpener(a.FS, csvsource.Options{
		Path:          c.Input.Path,
		Mode:          c.Input.Mode,
		TextCol:       c.Input.TextCol,
		TextColIndex:  c.Input.TextColIndex,
		IDCol:         c.Input.IDCol,
		GroupCol:      c.Input.GroupCol,
		GroupColIndex: c.Input.GroupColIndex,
	}, a.Logger)

	var publishers application.MultiPublisher
	if c.Output.LivePath != "" {
		publishers = append(publishers, tracking.NewLivePublisher(a.FS, c.Output.LivePath))
	}
	publishers = append(publishers, extra...)

	return application.NewRunService(
		source,
		csvoutput.NewOpener(a.FS, c.Output.Path),
		predictor,
		publishers,
		a.historyRecorder(),
		tracking.NewSummaryWriter(a.FS, c.Output.Path),
		a.Logger,
	), nil
}

// Predictor builds the configured predictor backend
func (a *App) Predictor() (ports.Predictor, error) {
	c := a.Config.Model
	timeout, err := a.Config.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	var p ports.Predictor
	switch c.Backend {
	case config.BackendHTTP:
		p = httpmodel.NewPredictor(httpmodel.Config{
			Endpoint: c.Endpoint,
			Model:    c.Name,
			MaxLen:   c.MaxLen,
			Timeout:  timeout,
			Retries:  c.Retries,
		})
	case config.BackendCommand:
		cmd := scorecmd.NewPredictor(scorecmd.Config{
			Command: c.Command,
			Args:    c.Args,
			Model:   c.Name,
			MaxLen:  c.MaxLen,
			Timeout: timeout,
		})
		if !cmd.IsAvailable() {
			return nil, fmt.Errorf("%w: scorer command %q not found", domain.ErrConfiguration, c.Command)
		}
		p = cmd
	default:
		p = lexicon.NewPredictor(c.MaxLen)
	}

	if c.CacheSize > 0 {
		cached, err := predcache.New(p, c.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
		}
		p = cached
	}
	return p, nil
}

// historyRecorder returns the configured run history sinks. A SQLite
// database that cannot be opened is skipped with a warning.
func (a *App) historyRecorder() ports.HistoryRecorder {
	var recorders application.MultiRecorder
	if a.Config.Output.HistoryPath != "" {
		recorders = append(recorders, tracking.NewHistoryFile(a.FS, a.Config.Output.HistoryPath))
	}
	if a.Config.Output.HistoryDB != "" {
		db, err := sqlite.Open(a.Config.Output.HistoryDB)
		if err != nil {
			a.Logger.Warn("Failed to open run history database", zap.String("path", a.Config.Output.HistoryDB), zap.Error(err))
		} else {
			a.closers = append(a.closers, db)
			recorders = append(recorders, db)
		}
	}
	if len(recorders) == 0 {
		return nil
	}
	return recorders
}

// HistoryReader returns the history source for listing past runs. The
// SQLite database is preferred when configured.
func (a *App) HistoryReader() (ports.HistoryReader, error) {
	if a.Config.Output.HistoryDB != "" {
		db, err := sqlite.Open(a.Config.Output.HistoryDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		return db, nil
	}
	return tracking.NewHistoryFile(a.FS, a.Config.Output.HistoryPath), nil
}

var globalApp *App

// GetApp returns the global app instance, creating it if needed
func GetApp() (*App, error) {
	if globalApp == nil {
		app, err := NewApp(configFlag, os.LookupEnv)
		if err != nil {
			return nil, err
		}
		globalApp = app
	}
	return globalApp, nil
}
