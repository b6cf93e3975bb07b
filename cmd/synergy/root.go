package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tgienger/synergy/internal/appstate"
	"github.com/tgienger/synergy/internal/auth"
	"github.com/tgienger/synergy/internal/config"
	"github.com/tgienger/synergy/internal/db"
	"github.com/tgienger/synergy/internal/fixtures"
	"github.com/tgienger/synergy/internal/forms"
	"github.com/tgienger/synergy/internal/ids"
	"github.com/tgienger/synergy/internal/install"
	"github.com/tgienger/synergy/internal/logger"
	"github.com/tgienger/synergy/internal/photo"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/ui"
	"github.com/tgienger/synergy/internal/ui/views"
)

// emailDelay is the simulated round trip of the demo email provider
const emailDelay = time.Second

type rootOptions struct {
	configPath string
	fixtures   string
	watch      bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "synergy",
		Short: "SynergySphere team collaboration in the terminal",
		Long: `SynergySphere brings projects, tasks, discussions, documents and time
tracking together in one terminal app.

Run without arguments to start the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), o)
		},
	}

	cmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "config file (default ~/.config/synergy/config.yaml)")
	cmd.Flags().StringVar(&o.fixtures, "fixtures", "", "YAML file replacing the built-in demo data")
	cmd.Flags().BoolVar(&o.watch, "watch", false, "reload the fixtures file when it changes")

	cmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(o),
		newSettingsCmd(o),
		newLogoutCmd(o),
		newThemeCmd(o),
	)
	return cmd
}

// loadConfig reads the config from --config or the default location
func loadConfig(o *rootOptions) (*config.Config, string, error) {
	path := o.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func openDB(cfg *config.Config) (*db.DB, error) {
	database, err := db.New(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return database, nil
}

func runTUI(ctx context.Context, o *rootOptions) error {
	cfg, _, err := loadConfig(o)
	if err != nil {
		return err
	}
	if o.fixtures != "" {
		cfg.Fixtures.Path = o.fixtures
	}
	if o.watch {
		cfg.Fixtures.Watch = true
	}

	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = logger.DefaultFile()
	}
	log, flush, err := logger.New("synergy", logger.Options{Env: cfg.Env, Level: cfg.Logging.Level, File: logFile})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer flush()

	var (
		database *db.DB
		seed     *fixtures.Seed
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := openDB(cfg)
		database = d
		return err
	})
	g.Go(func() error {
		s, err := fixtures.Load(cfg.Fixtures.Path)
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		seed = s
		return nil
	})
	if err := g.Wait(); err != nil {
		if database != nil {
			database.Close()
		}
		return err
	}
	defer database.Close()

	state := appstate.New(database, ids.UUID{}.NewID(), appstate.Theme(cfg.UI.Theme))
	authSvc := auth.NewService(state, log)

	var oauth auth.Provider
	if cfg.Auth.ClientID != "" {
		oauth = auth.NewOAuth(auth.OAuthConfig{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			AuthURL:      cfg.Auth.AuthURL,
			TokenURL:     cfg.Auth.TokenURL,
			UserInfoURL:  cfg.Auth.UserInfoURL,
			CallbackAddr: cfg.Auth.CallbackAddr,
			Scopes:       cfg.Auth.Scopes,
		}, auth.OpenBrowser, nil, log.Named("oauth"))
	}

	installDir := cfg.Install.Dir
	if installDir == "" {
		if dir, err := install.DefaultDir(); err == nil {
			installDir = dir
		}
	}

	app := ui.NewApp(ui.Config{
		Deps: views.Deps{
			Env:   forms.DefaultEnv(),
			Seed:  seed,
			Feed:  repo.NewFeed(),
			State: state,
			Log:   log,
			Ctx:   ctx,
		},
		Login: views.LoginConfig{
			Service: authSvc,
			OAuth:   oauth,
			Delay:   emailDelay,
			Timeout: cfg.Auth.Timeout,
		},
		Profile: views.ProfileConfig{
			Auth:    authSvc,
			Native:  photo.DetectTermux(),
			Options: photo.Options{Quality: cfg.Photo.Quality, AllowEditing: cfg.Photo.AllowEditing},
		},
		Install: install.NewController(install.NewBinaryHost(installDir, "synergy"), state, log.Named("install")),
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if cfg.Fixtures.Watch && cfg.Fixtures.Path != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			err := fixtures.Watch(watchCtx, cfg.Fixtures.Path, func(s *fixtures.Seed, err error) {
				p.Send(ui.FixturesReloadedMsg{Seed: s, Err: err})
			})
			if err != nil {
				log.Warn("fixtures watcher stopped", zap.Error(err))
			}
		}()
	}

	log.Info("starting", zap.String("version", version), zap.String("driver", cfg.Storage.Driver))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
