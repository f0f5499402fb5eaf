// teamterm is a terminal client for the hosted team-messaging service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kjeldgaard/teamterm/internal/api"
	"github.com/kjeldgaard/teamterm/internal/app"
	"github.com/kjeldgaard/teamterm/internal/auth"
	"github.com/kjeldgaard/teamterm/internal/config"
	"github.com/kjeldgaard/teamterm/internal/logger"
	"github.com/kjeldgaard/teamterm/internal/ui"
	"github.com/kjeldgaard/teamterm/internal/worker"
)

var (
	flagConfigDir string
	flagLogLevel  string
	flagNoCache   bool
)

func main() {
	root := &cobra.Command{
		Use:           "teamterm",
		Short:         "Terminal client for your team messaging service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: OS config dir)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "ignore and do not write the token cache")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	dir := flagConfigDir
	if dir == "" {
		var err error
		if dir, err = config.DefaultDir(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	ring, err := logger.Setup(dir, flagLogLevel, cfg.Debug)
	if err != nil {
		return err
	}
	log.Info().Str("config_dir", dir).Msg("starting teamterm")

	token, err := login(ctx, dir)
	if err != nil {
		return err
	}

	client := api.NewClient("", token.AccessToken)

	var program *tea.Program
	w := worker.New(client, func(m worker.Mutation) {
		program.Send(m)
	}, cfg.MessagesToLoad)

	a := app.New(w.Inbox())
	a.Cache.Rooms.SetInactiveThreshold(time.Duration(cfg.InactiveDays) * 24 * time.Hour)

	model := ui.New(a, ring, ui.NewStyles(cfg.Theme))
	program = tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var group errgroup.Group
	group.Go(func() error {
		err := w.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		defer cancel()
		defer a.Shutdown()
		_, err := program.Run()
		return err
	})
	group.Go(func() error {
		// A signal or a worker failure tears the program down; Quit is
		// safe to call after the program already exited.
		<-ctx.Done()
		program.Quit()
		return nil
	})
	return group.Wait()
}

// login returns a usable token, from the cache when possible, otherwise
// through the browser flow. First runs also prompt for the integration
// credentials.
func login(ctx context.Context, dir string) (*auth.Token, error) {
	client, err := config.LoadClient(dir)
	if os.IsNotExist(err) {
		if client, err = auth.PromptClient(); err != nil {
			return nil, err
		}
		if err := config.SaveClient(dir, client); err != nil {
			return nil, err
		}
		log.Info().Msg("saved integration credentials")
	} else if err != nil {
		return nil, err
	}

	cachePath, err := auth.CachePath()
	if err != nil {
		return nil, err
	}
	if !flagNoCache {
		if tok := auth.LoadToken(cachePath, time.Now()); tok != nil {
			log.Debug().Msg("using cached token")
			return tok, nil
		}
	}

	tok, err := auth.NewFlow(client).Login(ctx)
	if err != nil {
		return nil, err
	}
	if !flagNoCache {
		if err := auth.SaveToken(cachePath, tok); err != nil {
			log.Warn().Err(err).Msg("cannot cache token")
		}
	}
	return tok, nil
}
