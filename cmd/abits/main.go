package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sdboyer/abits/config"
	"github.com/sdboyer/abits/pipeline"
)

const appName = "abits"

// version is set at link time.
var version = "dev"

type envKey struct{}

// localEnv keeps everything program needs in a single place.
type localEnv struct {
	cfg   *config.Config
	log   *zap.Logger
	start time.Time
}

func envFromContext(ctx context.Context) *localEnv {
	if env, ok := ctx.Value(envKey{}).(*localEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func contextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &localEnv{start: time.Now()})
}

// initializeAppContext prepares configuration and logging after command line
// has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	env := envFromContext(ctx)

	configFile := cmd.String("config")
	if env.cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		env.cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if env.log, err = env.cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}

	env.log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", version), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, _ *cli.Command) (err error) {
	env := envFromContext(ctx)
	if env.log != nil {
		env.log.Debug("Program ended", zap.Duration("elapsed", time.Since(env.start)))
		if er := env.log.Sync(); er != nil && !errors.Is(er, syscall.EINVAL) && !errors.Is(er, syscall.ENOTTY) {
			err = multierr.Append(err, fmt.Errorf("unable to flush log: %w", er))
		}
	}
	return
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.log != nil {
		env.log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// reported either by exitErrHandler or on exit directly to stderr
	return err
}

func generate(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() > 0 {
		env.log.Warn("Malformed command line, unexpected arguments", zap.Strings("ignoring", cmd.Args().Slice()))
	}

	gc := &env.cfg.Generate
	if cmd.IsSet("source") {
		gc.Source = cmd.String("source")
	}
	if cmd.IsSet("out-dir") {
		gc.Destination = cmd.String("out-dir")
	}
	if cmd.Bool("verify") {
		gc.Verify = true
	}
	if cmd.Bool("strict") {
		gc.Strict = true
	}
	if len(gc.Source) == 0 {
		return errors.New("source directory is required, use --source or set generate.source in configuration")
	}
	if err := config.Validate(env.cfg); err != nil {
		return err
	}

	sum, err := pipeline.New(*gc, env.log).Run(ctx)
	env.log.Info("Generation finished",
		zap.String("source", gc.Source),
		zap.String("destination", gc.Destination),
		zap.Bool("verify", gc.Verify),
		zap.Int("files", sum.Discovered),
		zap.Int("failed files", sum.FailedFiles),
		zap.Int("skipped fragments", sum.SkippedFragments),
		zap.Int("modules", sum.Generated),
		zap.Int("empty units", sum.Empty()),
		zap.Int("failed units", sum.FailedUnits),
	)
	return err
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)

	var (
		err  error
		data []byte
	)
	if cmd.Bool("default") {
		data = config.Prepare()
	} else if data, err = config.Dump(env.cfg); err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	out := os.Stdout
	if fname := cmd.Args().Get(0); len(fname) > 0 {
		if out, err = os.Create(fname); err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}
	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}

func generateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "`DIR` searched recursively for JSON ABI artifacts"},
		&cli.StringFlag{Name: "out-dir", Aliases: []string{"o"}, Usage: "`DIR` receiving generated modules (default from configuration: ./abis)"},
		&cli.BoolFlag{Name: "verify", Usage: "compare generated modules with output directory instead of writing them"},
		&cli.BoolFlag{Name: "strict", Usage: "fail without writing anything if any module fails to generate"},
	}
}

// newApp builds the command line. Without a subcommand the program generates.
func newApp() *cli.Command {
	return &cli.Command{
		Name:            appName,
		Usage:           "generates TypeScript const modules from contract ABI artifacts",
		Version:         version + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Action:          generate,
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log debug messages to console"},
		}, generateFlags()...),
		Commands: []*cli.Command{
			{
				Name:         "generate",
				Usage:        "Generates one TypeScript module per artifact file name",
				OnUsageError: usageErrorHandler,
				Action:       generate,
				Flags:        generateFlags(),
			},
			{
				Name:         "dumpconfig",
				Usage:        "Dumps either default or actual configuration (YAML)",
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "[DESTINATION]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = newApp().Run(ctx, os.Args)
}
