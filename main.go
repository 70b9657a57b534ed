package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bizdesk/api"
	"bizdesk/app"
	"bizdesk/cmd"
	"bizdesk/cmd/commands"
	"bizdesk/cmd/help"
	"bizdesk/config"
	"bizdesk/log"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	version      = "0.3.0"
	configFlag   string
	demoFlag     bool
	resourceFlag string
	rootCmd      = &cobra.Command{
		Use:   "bizdesk",
		Short: "bizdesk - a keyboard-driven terminal back office",
		RunE: func(c *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			loader := config.NewLoader(configFlag)
			cfg, err := loader.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log.Initialize(cfg.LogSettings())
			defer log.Close()

			opts := app.Options{
				Config:   cfg,
				Loader:   loader,
				Resource: resourceFlag,
			}
			if demoFlag {
				opts.Service = api.NewDemo()
			} else {
				client, err := api.NewClient(api.Options{
					BaseURL: cfg.API.BaseURL,
					Token:   cfg.API.Token,
					Tenant:  cfg.API.Tenant,
					Timeout: cfg.API.Timeout,
				})
				if err != nil {
					return fmt.Errorf("%w (set api.base_url or run with --demo)", err)
				}
				opts.Service = client
				opts.Client = client
			}

			state := config.LoadState()
			opts.State = state
			log.InfoLog.Printf("starting bizdesk %s (demo=%t)", version, demoFlag)
			return app.Run(ctx, opts)
		},
	}

	keysCmd = &cobra.Command{
		Use:   "keys [resource]",
		Short: "Print the keyboard shortcuts of a resource list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id := cmd.Resources[0].ID
			if len(args) == 1 {
				id = args[0]
			}
			res, ok := cmd.LookupResource(id)
			if !ok {
				return fmt.Errorf("unknown resource %q (have %s)", id, strings.Join(cmd.ResourceIDs(), ", "))
			}

			gen := help.NewPlainGenerator()
			if term.IsTerminal(int(os.Stdout.Fd())) {
				gen = help.NewGenerator()
			}
			shortcuts := legendShortcuts(res)
			fmt.Fprintln(c.OutOrStdout(), gen.GenerateContextHelp(res.Name, shortcuts))
			for _, issue := range help.ValidateShortcuts(shortcuts) {
				fmt.Fprintln(c.ErrOrStderr(), "warning:", issue)
			}
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of bizdesk",
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintf(c.OutOrStdout(), "bizdesk version %s\n", version)
		},
	}
)

// legendShortcuts builds the list shortcuts of res with inert actions, for
// printing only.
func legendShortcuts(res cmd.Resource) []cmd.Shortcut {
	noop := func() {}
	h := commands.ListHandlers{
		FocusSearch:  noop,
		New:          noop,
		Help:         noop,
		Up:           noop,
		Down:         noop,
		Escape:       noop,
		Reload:       noop,
		Open:         noop,
		Edit:         noop,
		Delete:       noop,
		CopyID:       noop,
		ToggleFilter: func(int) {},
	}
	for _, f := range res.Filters {
		h.Filters = append(h.Filters, commands.FilterKey{Digit: f.Digit, Label: f.Label})
	}
	if res.Generate != nil {
		h.Generate = noop
	}
	if res.QuickSale {
		h.QuickSale = noop
	}
	return commands.ListShortcuts(h)
}

func init() {
	rootCmd.Flags().StringVar(&configFlag, "config", "",
		"Path to the config file (default ~/.bizdesk/config.toml)")
	rootCmd.Flags().BoolVar(&demoFlag, "demo", false,
		"Run against built-in sample data instead of the API")
	rootCmd.Flags().StringVarP(&resourceFlag, "resource", "r", "",
		fmt.Sprintf("Resource to open first (%s)", strings.Join(cmd.ResourceIDs(), ", ")))

	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
