// Package main provides the storefront CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joss/storefront/internal/cart"
	"github.com/joss/storefront/internal/catalog"
	"github.com/joss/storefront/internal/config"
	"github.com/joss/storefront/internal/logging"
	"github.com/joss/storefront/internal/render"
	"github.com/joss/storefront/internal/runtime"
	"github.com/joss/storefront/internal/session"
	"github.com/joss/storefront/internal/store"
)

var (
	version   = "0.1.0"
	pretty    = true
	asJSON    bool
	ephemeral bool
	app       *state
	cliLog    = logging.New("cli")
)

// state is what every command works against, built once per invocation.
type state struct {
	kv       store.KVStore
	api      *catalog.Client
	sessions *session.Manager
	cart     *cart.Manager
	shutdown *runtime.ShutdownManager
	stop     func()
	ctx      context.Context
}

func main() {
	defer panicGuard().Recover()

	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Browse the catalog and manage a local cart",
		Long: `storefront: a terminal client for a REST product catalog.

The session and cart are kept on this machine and survive between runs.
Run with no arguments for a summary of both.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
		Run: func(cmd *cobra.Command, args []string) {
			user, ok := app.sessions.User()
			items, total := app.cart.TotalItems(), app.cart.TotalPrice()
			if asJSON {
				printJSON(map[string]any{
					"logged_in": ok,
					"username":  user.Username,
					"items":     items,
					"total":     total,
				})
				return
			}
			fmt.Print(renderer().Home(user, ok, items, total))
		},
	}

	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Pretty print output")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep session and cart in memory only")

	rootCmd.AddGroup(
		&cobra.Group{ID: "catalog", Title: "Catalog:"},
		&cobra.Group{ID: "cart", Title: "Cart:"},
		&cobra.Group{ID: "account", Title: "Account:"},
	)

	products := productsCmd()
	products.GroupID = "catalog"
	rootCmd.AddCommand(products)

	categories := categoriesCmd()
	categories.GroupID = "catalog"
	rootCmd.AddCommand(categories)

	cartC := cartCmd()
	cartC.GroupID = "cart"
	rootCmd.AddCommand(cartC)

	login := loginCmd()
	login.GroupID = "account"
	rootCmd.AddCommand(login)

	logout := logoutCmd()
	logout.GroupID = "account"
	rootCmd.AddCommand(logout)

	whoami := whoamiCmd()
	whoami.GroupID = "account"
	rootCmd.AddCommand(whoami)

	// Ungrouped
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		teardown()
		os.Exit(1)
	}
}

// setup loads configuration, opens the store and restores session and cart.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	env := config.Env()
	logging.SetLevel(logging.ParseLevel(env.LogLevel))

	if env.NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	kv, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if err := kv.Ping(context.Background()); err != nil {
		kv.Close()
		return fmt.Errorf("store unavailable: %w", err)
	}

	s := &state{
		kv:       kv,
		shutdown: runtime.NewShutdownManager(runtime.DefaultShutdownTimeout),
	}
	s.shutdown.RegisterCloser("store", kv)
	s.stop = s.shutdown.ListenForSignals()

	opts := []catalog.Option{}
	if env.HTTPTimeout > 0 {
		opts = append(opts, catalog.WithTimeout(env.HTTPTimeout))
	}
	// The token source reads the session lazily, so it is set after sessions exists.
	var sessions *session.Manager
	opts = append(opts, catalog.WithTokenSource(func() string { return sessions.Token() }))
	s.api = catalog.New(env.APIURL, opts...)
	sessions = session.NewManager(kv, s.api)
	s.sessions = sessions
	s.cart = cart.NewManager(kv)

	// One request ID per invocation ties its log lines and API calls together.
	s.ctx = logging.WithRequestID(s.shutdown.Context(), "")
	s.sessions.Restore(s.ctx)
	s.cart.Restore(s.ctx)

	app = s
	return nil
}

func openStore() (store.KVStore, error) {
	if ephemeral {
		cliLog.Debug("store_opened", map[string]interface{}{"backend": "memory"})
		return store.NewMemory(), nil
	}
	s, err := store.OpenSQLite(config.GetPaths().DB)
	if err != nil {
		return nil, err
	}
	cliLog.Debug("store_opened", map[string]interface{}{"backend": "sqlite", "path": s.Path()})
	return s, nil
}

func teardown() {
	if app == nil {
		return
	}
	app.stop()
	if err := app.shutdown.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	app = nil
}

// ctx returns the invocation context. It carries the request ID and is
// cancelled on SIGINT/SIGTERM.
func ctx() context.Context {
	return app.ctx
}

func renderer() *render.Renderer {
	return render.New(pretty)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		// No store or network needed.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("storefront %s\n", version)
		},
	}
}
