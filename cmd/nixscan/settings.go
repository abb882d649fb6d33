package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nixscan/internal/config"
	"nixscan/internal/discover"
	"nixscan/internal/driver"
	"nixscan/internal/project"
)

// loadConfig reads --config when given, otherwise the nearest .nixscan.toml
// above root. Persistent flags the user set win over the file.
func loadConfig(cmd *cobra.Command, root string) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}

	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		start := root
		if info, statErr := os.Stat(root); statErr == nil && !info.IsDir() {
			start = filepath.Dir(root)
		}
		cfg, err = config.Discover(start)
	}
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Path != "" {
		logger.Debug("config.loaded", "path", cfg.Path)
	}
	for _, key := range cfg.Unknown {
		logger.Warn("config.unknown_key", "path", cfg.Path, "key", key)
	}

	if flags.Changed("color") {
		cfg.Output.Color, _ = flags.GetString("color")
	}
	if flags.Changed("max-diagnostics") {
		cfg.Scan.MaxDiagnostics, _ = flags.GetInt("max-diagnostics")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// scanFlags are shared by analyze and graph.
type scanFlags struct {
	jobs          int
	sequential    bool
	exclude       []string
	noIgnoreFiles bool
	noCache       bool
	format        string
	ui            string
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "parallel parse workers (0 = config or GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.sequential, "sequential", false, "parse files one at a time")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "gitignore-style patterns to skip (repeatable)")
	cmd.Flags().BoolVar(&f.noIgnoreFiles, "no-ignore-files", false, "do not read .gitignore and .nixscanignore")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "do not use the on-disk parse cache")
	cmd.Flags().StringVar(&f.format, "format", "", "output format (text|json|yaml)")
	cmd.Flags().StringVar(&f.ui, "ui", "auto", "progress UI (auto|on|off)")
}

// apply folds the command line into cfg.
func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if f.jobs > 0 {
		cfg.Scan.Jobs = f.jobs
	}
	cfg.Scan.Exclude = append(cfg.Scan.Exclude, f.exclude...)
	if f.noIgnoreFiles {
		cfg.Scan.NoIgnoreFiles = true
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = f.format
	}
	return cfg.Validate()
}

// scanPlan is everything a scan needs once flags and config are merged.
type scanPlan struct {
	root  string
	cfg   config.Config
	paths []string
	opts  driver.ScanOptions
	tui   bool
	quiet bool
}

func prepareScan(cmd *cobra.Command, args []string, f *scanFlags) (*scanPlan, error) {
	root, err := scanRoot(args)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return nil, err
	}
	if err := f.apply(cmd, &cfg); err != nil {
		return nil, err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	mode, err := readUIMode(f.ui)
	if err != nil {
		return nil, err
	}

	paths, err := discover.Files(root, discover.Options{
		SkipDirs:      cfg.Scan.SkipDirs,
		Exclude:       cfg.Scan.Exclude,
		NoIgnoreFiles: cfg.Scan.NoIgnoreFiles,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}

	base := root
	if info, statErr := os.Stat(root); statErr == nil && !info.IsDir() {
		base = filepath.Dir(root)
	}
	plan := &scanPlan{
		root:  root,
		cfg:   cfg,
		paths: paths,
		tui:   shouldUseTUI(mode, quiet),
		quiet: quiet,
		opts: driver.ScanOptions{
			ParseOptions: driver.ParseOptions{
				Jobs:           cfg.Scan.Jobs,
				Sequential:     f.sequential,
				MaxDiagnostics: cfg.Scan.MaxDiagnostics,
				BaseDir:        base,
				Disk:           openDiskCache(cfg),
				Logger:         logger,
			},
			Timings: timings,
		},
	}
	return plan, nil
}

// scanRoot returns the explicit target, or the project root above the
// working directory, or the working directory itself.
func scanRoot(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	root, ok, err := project.FindProjectRoot(".")
	if err != nil {
		return "", err
	}
	if !ok {
		return ".", nil
	}
	if rel, err := filepath.Rel(workingDir(), root); err == nil {
		return rel, nil
	}
	return root, nil
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// openDiskCache returns nil when caching is off or the directory is unusable;
// a scan never fails because of the cache.
func openDiskCache(cfg config.Config) *driver.DiskCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	var (
		dc  *driver.DiskCache
		err error
	)
	if cfg.Cache.Dir != "" {
		dc, err = driver.OpenDiskCacheAt(cfg.Cache.Dir)
	} else {
		dc, err = driver.OpenDiskCache("nixscan")
	}
	if err != nil {
		logger.Warn("cache.open.err", "err", err)
		return nil
	}
	logger.Debug("cache.open", "dir", dc.Dir())
	return dc
}
