package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	seishocli "github.com/hyperjump/seisho/internal/cli"
	"github.com/hyperjump/seisho/internal/config"
	"github.com/hyperjump/seisho/internal/corpus"
	"github.com/hyperjump/seisho/internal/indexer"
	"github.com/hyperjump/seisho/internal/mcp"
	"github.com/hyperjump/seisho/internal/models"
	"github.com/hyperjump/seisho/internal/search"
	"github.com/hyperjump/seisho/internal/server"
	"github.com/hyperjump/seisho/internal/storage"
	"github.com/hyperjump/seisho/pkg/utils"
)

// runtimeEnv is what every command needs before doing its own work.
type runtimeEnv struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	debug      bool
}

func setup(c *cli.Context) (*runtimeEnv, error) {
	cfg, path, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || c.Bool("debug")
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &runtimeEnv{cfg: cfg, configPath: path, logger: logger, debug: debug}, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serverCommand(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}
	defer env.logger.Sync()
	env.logger.Info("config loaded",
		zap.String("config_path", env.configPath),
		zap.Bool("debug", env.debug),
	)

	components, err := initializeComponents(env.cfg, env.logger)
	if err != nil {
		return err
	}
	defer components.Close()

	ctx, stop := signalContext()
	defer stop()

	if c.Bool("preload") {
		components.Store.EnsureAllLoaded(ctx)
	}

	if env.cfg.Watch.Enabled && env.cfg.Corpus.Source == config.SourceFiles {
		w := newVolumeWatcher(ctx, env.cfg, components, env.logger)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
	}

	srv := server.NewServer(components.Async, env.cfg, components.Disk, env.logger)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	env.logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func mcpCommand(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	components, err := initializeComponents(env.cfg, env.logger)
	if err != nil {
		return err
	}
	defer components.Close()

	ctx, stop := signalContext()
	defer stop()
	return mcp.NewServer(components.Async, env.cfg, version, env.logger).Serve(ctx)
}

func searchCommand(c *cli.Context) error {
	format, err := seishocli.ParseOutputFormat(c.String("output"))
	if err != nil {
		return err
	}
	req := models.CrossReferenceRequest{
		Query:  strings.Join(c.Args().Slice(), " "),
		Scope:  c.String("scope"),
		Volume: c.String("volume"),
		Books:  c.StringSlice("book"),
	}
	if strings.TrimSpace(req.Query) == "" {
		return cli.Exit("usage: seisho search [flags] <query>", 1)
	}

	var resp *models.SearchResponse
	if url := c.String("server"); url != "" {
		resp, err = postJSON[models.SearchResponse](url+"/api/v1/search/crossref", req)
	} else {
		resp, err = withEngine(c, func(ctx context.Context, comp *Components) (*models.SearchResponse, error) {
			scope, err := search.ProcessCrossReference(&req, comp.Config.Search.MinQueryLength, comp.Store.Names())
			if err != nil {
				return nil, err
			}
			return comp.Async.CrossReference(ctx, scope, req.Query).Wait(ctx)
		})
	}
	if err != nil {
		return err
	}
	return seishocli.WriteSearchResults(c.App.Writer, resp, format, strings.TrimSpace(req.Query))
}

func proximityCommand(c *cli.Context) error {
	format, err := seishocli.ParseOutputFormat(c.String("output"))
	if err != nil {
		return err
	}
	if c.NArg() != 2 {
		return cli.Exit("usage: seisho proximity [flags] <term1> <term2>", 1)
	}
	req := models.ProximityRequest{Term1: c.Args().Get(0), Term2: c.Args().Get(1)}
	if c.IsSet("distance") {
		d := c.Int("distance")
		req.MaxDistance = &d
	}

	var resp *models.SearchResponse
	if url := c.String("server"); url != "" {
		resp, err = postJSON[models.SearchResponse](url+"/api/v1/search/proximity", req)
	} else {
		resp, err = withEngine(c, func(ctx context.Context, comp *Components) (*models.SearchResponse, error) {
			d, err := search.ProcessProximity(&req, comp.Config.Search.DefaultProximityDistance)
			if err != nil {
				return nil, err
			}
			return comp.Async.Proximity(ctx, req.Term1, req.Term2, d).Wait(ctx)
		})
	}
	if err != nil {
		return err
	}
	return seishocli.WriteSearchResults(c.App.Writer, resp, format)
}

func frequencyCommand(c *cli.Context) error {
	format, err := seishocli.ParseOutputFormat(c.String("output"))
	if err != nil {
		return err
	}
	req := models.FrequencyRequest{Terms: c.Args().Slice(), Book: c.String("book")}
	if err := search.ProcessFrequency(&req); err != nil {
		return cli.Exit("usage: seisho frequency [--book name] <term>...", 1)
	}

	var resp *models.FrequencyResponse
	if url := c.String("server"); url != "" {
		path := "/api/v1/frequency/books"
		if req.Book != "" {
			path = "/api/v1/frequency/chapters"
		}
		resp, err = postJSON[models.FrequencyResponse](url+path, req)
	} else {
		resp, err = withEngine(c, func(ctx context.Context, comp *Components) (*models.FrequencyResponse, error) {
			if req.Book != "" {
				return comp.Async.ChapterFrequencies(ctx, req.Book, req.Terms).Wait(ctx)
			}
			return comp.Async.BookFrequencies(ctx, req.Terms).Wait(ctx)
		})
	}
	if err != nil {
		return err
	}
	return seishocli.WriteFrequencies(c.App.Writer, resp, format)
}

func importCommand(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	db, err := storage.NewSQLiteStorage(env.cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open corpus database: %w", err)
	}
	defer db.Close()

	files := newFileLoader(env.cfg, env.logger)
	names := c.StringSlice("volume")
	prune := len(names) == 0
	if prune {
		names = files.Names()
	}

	ctx, stop := signalContext()
	defer stop()
	imp := indexer.NewImporter(files, db,
		indexer.WithLogger(env.logger),
		indexer.WithForce(c.Bool("force")),
		indexer.WithPrune(prune),
	)
	res, err := imp.Import(ctx, names)
	if res != nil {
		seishocli.WriteImportResult(c.App.Writer, res.Imported, res.Skipped, res.Removed, res.Failed)
	}
	if err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return cli.Exit(fmt.Sprintf("%d volume(s) failed to import", len(res.Failed)), 1)
	}
	return nil
}

func initCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return cli.Exit(fmt.Sprintf("%s already exists (use --force to overwrite)", path), 1)
	}
	cfg := &config.Config{
		Corpus:  config.CorpusConfig{Directory: "./volumes"},
		Storage: config.StorageConfig{DatabasePath: "./db/corpus.db"},
	}
	config.ApplyDefaults(cfg)
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	return nil
}

// statusResponse is the shape of GET /api/v1/status. Database is only filled
// locally when volumes are served from the corpus database.
type statusResponse struct {
	Volumes        []corpus.VolumeStatus `json:"volumes"`
	DiskUsageBytes int64                 `json:"disk_usage_bytes,omitempty"`
	Database       *databaseStats        `json:"database,omitempty"`
}

type databaseStats struct {
	Volumes int64 `json:"volumes"`
	Verses  int64 `json:"verses"`
}

func countDatabase(ctx context.Context, db *storage.SQLiteStorage) (*databaseStats, error) {
	volumes, err := db.CountVolumes(ctx)
	if err != nil {
		return nil, err
	}
	verses, err := db.CountVerses(ctx)
	if err != nil {
		return nil, err
	}
	return &databaseStats{Volumes: volumes, Verses: verses}, nil
}

func statusCommand(c *cli.Context) error {
	format, err := seishocli.ParseOutputFormat(c.String("output"))
	if err != nil {
		return err
	}

	var status *statusResponse
	if url := c.String("server"); url != "" {
		status, err = getJSON[statusResponse](url + "/api/v1/status")
	} else {
		status, err = withEngine(c, func(ctx context.Context, comp *Components) (*statusResponse, error) {
			if c.Bool("load") {
				comp.Store.EnsureAllLoaded(ctx)
			}
			s := &statusResponse{Volumes: comp.Engine.Status()}
			if n, err := comp.Disk.DiskUsageBytes(); err == nil {
				s.DiskUsageBytes = n
			}
			if comp.Storage != nil {
				db, err := countDatabase(ctx, comp.Storage)
				if err != nil {
					return nil, fmt.Errorf("failed to count corpus database: %w", err)
				}
				s.Database = db
			}
			return s, nil
		})
	}
	if err != nil {
		return err
	}
	if format == seishocli.OutputJSON {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	if err := seishocli.WriteStatus(c.App.Writer, status.Volumes, format); err != nil {
		return err
	}
	if format == seishocli.OutputText && status.DiskUsageBytes > 0 {
		fmt.Fprintf(c.App.Writer, "\ndisk_usage_bytes: %d\n", status.DiskUsageBytes)
	}
	if format == seishocli.OutputText && status.Database != nil {
		fmt.Fprintf(c.App.Writer, "database: %d volumes, %d verses\n", status.Database.Volumes, status.Database.Verses)
	}
	return nil
}

// withEngine builds components from the config, runs fn and releases them.
func withEngine[T any](c *cli.Context, fn func(ctx context.Context, comp *Components) (T, error)) (T, error) {
	var zero T
	env, err := setup(c)
	if err != nil {
		return zero, err
	}
	defer env.logger.Sync()

	components, err := initializeComponents(env.cfg, env.logger)
	if err != nil {
		return zero, err
	}
	defer components.Close()

	ctx, stop := signalContext()
	defer stop()
	return fn(ctx, components)
}

func postJSON[T any](url string, body interface{}) (*T, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse[T](resp)
}

func getJSON[T any](url string) (*T, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse[T](resp)
}

func decodeResponse[T any](resp *http.Response) (*T, error) {
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
