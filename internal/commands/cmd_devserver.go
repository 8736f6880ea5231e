package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/data/db"
	"github.com/hay-kot/taskdeck/internal/data/stores"
	"github.com/hay-kot/taskdeck/internal/devserver"
	"github.com/hay-kot/taskdeck/internal/printer"
	"github.com/hay-kot/taskdeck/pkg/logutils"
)

type DevServerCmd struct {
	flags *Flags

	addr     string
	secret   string
	seedDemo bool
	origins  []string
}

// NewDevServerCmd creates a new devserver command
func NewDevServerCmd(flags *Flags) *DevServerCmd {
	return &DevServerCmd{flags: flags}
}

// Register adds the devserver command to the application
func (cmd *DevServerCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "devserver",
		Usage:     "Run a local task manager backend",
		UsageText: "taskdeck devserver [--addr HOST:PORT] [--seed-demo]",
		Description: `Serves the task manager REST API from a SQLite database in
<data-dir>/devserver. An administrator account admin/admin123 is created on
first start; --seed-demo also adds a demo/demo123 account with sample tasks.

Tokens are signed with TASKDECK_JWT_SECRET. Without a secret a random one is
generated and every token is invalidated on restart.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to devserver.addr)",
				Sources:     cli.EnvVars("TASKDECK_DEVSERVER_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "secret",
				Usage:       "token signing secret",
				Sources:     cli.EnvVars("TASKDECK_JWT_SECRET"),
				Destination: &cmd.secret,
			},
			&cli.BoolFlag{
				Name:        "seed-demo",
				Usage:       "create the demo account and sample tasks",
				Destination: &cmd.seedDemo,
			},
			&cli.StringSliceFlag{
				Name:        "allow-origin",
				Usage:       "CORS origin allowed to call the API (repeatable, default all)",
				Destination: &cmd.origins,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DevServerCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config
	p := printer.Ctx(ctx)

	addr := cmd.addr
	if addr == "" {
		addr = cfg.DevServer.Addr
	}

	secret := cmd.secret
	if secret == "" {
		secret = cfg.DevServer.Secret
	}
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		p.Warnf("No TASKDECK_JWT_SECRET set, tokens will not survive a restart")
	}

	// The server logs to the console; the file logger keeps the client's log.
	logger, err := logutils.NewConsole(cmd.flags.LogLevel, os.Stderr)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	database, err := db.Open(cfg.DevServerDir(), db.DefaultOpenOptions())
	if err != nil && stores.IsCorruptionError(err) {
		aside, qerr := stores.QuarantineCorrupt(cfg.DevServerDir())
		if qerr != nil {
			return fmt.Errorf("open database: %w (recovery failed: %w)", err, qerr)
		}
		p.Warnf("Database was corrupt and has been moved to %s", aside)
		database, err = db.Open(cfg.DevServerDir(), db.DefaultOpenOptions())
	}
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close devserver database")
		}
	}()

	srv, err := devserver.New(database, devserver.Config{
		Secret:       secret,
		TokenTTL:     cfg.DevServer.JWTTTL,
		AllowOrigins: cmd.origins,
	}, logger)
	if err != nil {
		return err
	}

	if err := srv.Seed(ctx, cmd.seedDemo || cfg.DevServer.SeedDemo); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx, addr); err != nil {
		return err
	}

	p.Success("Development server listening", fmt.Sprintf("http://%s/api", srv.Addr()))
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
