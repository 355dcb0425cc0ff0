package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pictag/internal/config"
	"pictag/internal/errors"
	"pictag/internal/log"
	"pictag/internal/media"
	"pictag/internal/session"
	"pictag/internal/store"
	"pictag/internal/view"
	"pictag/pkg/types"
)

// rootOptions holds the persistent flags and the configuration they load
type rootOptions struct {
	cfgFile string
	dir     string
	debug   bool
	logJSON bool

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "pictag",
		Short:   "Sort a folder of images into categories",
		Long:    `pictag lets you tag the images of a directory with your own categories, filter and sort them, and step through them with hotkeys.`,
		Version: version,
		// Default action is the terminal UI
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/pictag/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "d", "", "image directory (default from config, then the current directory)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "write logs as JSON")

	// Add subcommands
	rootCmd.AddCommand(NewTUICmd(opts))
	rootCmd.AddCommand(NewScanCmd(opts))
	rootCmd.AddCommand(NewViewCmd(opts))
	rootCmd.AddCommand(NewCategoriesCmd(opts))
	rootCmd.AddCommand(NewTagCmd(opts))
	rootCmd.AddCommand(NewHotkeysCmd(opts))

	return rootCmd
}

// load reads the configuration and sets up logging. An unreadable config
// falls back to the defaults with a warning.
func (o *rootOptions) load(cmd *cobra.Command) error {
	var err error
	if o.cfgFile != "" {
		o.cfg, err = config.LoadConfigFile(o.cfgFile)
	} else {
		o.cfg, err = config.LoadConfig()
	}
	if err != nil {
		cmd.PrintErrln(warningText("Warning: " + err.Error()))
		cmd.PrintErrln(infoText("Using default settings."))
		o.cfg = config.New()
	}
	if o.debug {
		o.cfg.Log.Debug = true
	}
	if o.logJSON {
		o.cfg.Log.JSON = true
	}
	applyTextTheme(o.cfg.Theme)
	if cmd.Name() == "tui" || !cmd.HasParent() {
		// Logs would tear the alt screen, so only the log file receives them
		o.configureLogging(nil)
	} else {
		o.configureLogging(cmd.ErrOrStderr())
	}
	return nil
}

// configureLogging routes logs to out, or only to the configured file
// when out is nil
func (o *rootOptions) configureLogging(out io.Writer) {
	var logOpts []log.Option
	if out == nil {
		out = io.Discard
	}
	logOpts = append(logOpts, log.WithOutput(out))
	if o.cfg.Log.JSON {
		logOpts = append(logOpts, log.WithJSON())
	}
	if o.cfg.Log.File != "" {
		logOpts = append(logOpts, log.WithFile(o.cfg.Log.File))
	}
	log.Configure(logOpts...)
	log.SetDebug(o.cfg.Log.Debug)
}

// directory resolves the image directory: --dir, then the config, then
// the working directory
func (o *rootOptions) directory() (string, error) {
	dir := o.dir
	if dir == "" && o.cfg != nil {
		dir = o.cfg.Directories.Default
	}
	if dir == "" || dir == "." {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "error getting current directory")
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.NewFileError("failed to resolve directory", dir, errors.InvalidPath, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewFileError("directory does not exist", abs, errors.FileNotFound, err)
		}
		return "", errors.NewFileError("failed to access directory", abs, errors.FileAccessDenied, err)
	}
	if !fi.IsDir() {
		return "", errors.NewFileError("path is not a directory", abs, errors.InvalidPath, nil)
	}
	return abs, nil
}

// app is an opened session with the collaborators the commands share
type app struct {
	session *session.Session
	scanner *media.Scanner
	loader  *media.Loader
	dir     string
}

// openApp builds the gateway from the configuration, opens the session
// and, with scan set, lists the directory's images into it
func (o *rootOptions) openApp(ctx context.Context, scan bool) (*app, error) {
	dir, err := o.directory()
	if err != nil {
		return nil, err
	}

	configStore, err := store.NewConfigStore(o.cfg.Store.Backend, o.cfg.Store.Filename)
	if err != nil {
		return nil, err
	}
	loader, err := media.NewLoader(o.cfg.Cache.MaxMB << 20)
	if err != nil {
		return nil, err
	}
	scanner, err := media.NewScanner(
		media.WithMinSizeKB(o.cfg.Scan.MinSizeKB),
		media.WithExtensions(o.cfg.Scan.Extensions),
	)
	if err != nil {
		loader.Close()
		return nil, err
	}

	gateway := store.NewGateway(configStore, media.NewTrash(), loader)
	q := view.DefaultQuery()
	q.Sort = o.cfg.SortOption()
	sess := session.New(gateway, dir,
		session.WithFilename(o.cfg.Store.Filename),
		session.WithQuery(q),
	)
	if err := sess.Open(ctx); err != nil {
		loader.Close()
		return nil, err
	}

	a := &app{session: sess, scanner: scanner, loader: loader, dir: dir}
	if scan {
		images, err := scanner.Scan(dir)
		if err != nil {
			a.Close()
			return nil, err
		}
		sess.SetImages(images)
		log.LogWithFields(log.F("directory", dir), log.F("images", len(images))).Debug("Scanned directory")
	}
	return a, nil
}

// Close releases the image cache
func (a *app) Close() {
	a.loader.Close()
}

// resolvePath makes a path argument absolute so it matches scanned paths
func (a *app) resolvePath(p string) string {
	if !filepath.IsAbs(p) {
		if _, err := os.Stat(p); err != nil {
			p = filepath.Join(a.dir, p)
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// findCategory looks a category up by id, then by name
func (a *app) findCategory(ref string) (types.Category, error) {
	if c, ok := a.session.Category(ref); ok {
		return c, nil
	}
	for _, c := range a.session.Categories() {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	return types.Category{}, errors.NewNotFound(errors.CategoryNotFound, ref)
}
