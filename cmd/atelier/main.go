// Atelier is a deck-building alchemy guild game played in the terminal.
// Usage: atelier [play] [--plain] [--script <file>] [--trace] [--continue]
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nathoo/atelier/cli"
	"github.com/nathoo/atelier/config"
	"github.com/nathoo/atelier/session"
	"github.com/nathoo/atelier/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// flags holds the command line overrides for config.Config.
type flags struct {
	plain      bool
	trace      bool
	resume     bool
	script     string
	seed       int64
	contentDir string
	dataDir    string
	storage    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	play := &cobra.Command{
		Use:   "play",
		Short: "Start a new season (the default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, f)
		},
	}
	root := &cobra.Command{
		Use:           "atelier",
		Short:         "Run an alchemy guild for one season",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          play.RunE,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.contentDir, "content", "", "directory of Lua game data (default: built-in game)")
	pf.StringVar(&f.dataDir, "data-dir", "", "directory for saves and logs")
	pf.StringVar(&f.storage, "storage", "", "save backend: sqlite or memory")

	for _, c := range []*cobra.Command{root, play} {
		fs := c.Flags()
		fs.BoolVar(&f.plain, "plain", false, "use the line-mode interface")
		fs.BoolVar(&f.trace, "trace", false, "print every event on the bus")
		fs.BoolVar(&f.resume, "continue", false, "resume from the auto-save")
		fs.StringVar(&f.script, "script", "", "play commands from a file")
		fs.Int64Var(&f.seed, "seed", 0, "random seed (0 picks one)")
	}

	root.AddCommand(play, newSlotsCmd(&f), newVersionCmd())
	return root
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(f flags) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if f.contentDir != "" {
		cfg.ContentDir = f.contentDir
	}
	if f.dataDir != "" {
		cfg.DataDir = f.dataDir
	}
	if f.storage != "" {
		cfg.Backend = f.storage
	}
	if f.seed != 0 {
		cfg.Seed = f.seed
	}
	return cfg, cfg.Validate()
}

func runPlay(cmd *cobra.Command, f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	if f.script != "" {
		// Scripted runs must not touch the player's auto-save.
		cfg.AutoSave = false
	}

	s, err := session.Open(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if f.resume {
		if err := s.Continue(); err != nil {
			return errors.Wrap(err, "continue")
		}
	}

	// Script mode: read commands from the file, force plain, echo commands.
	if f.script != "" {
		in, err := os.Open(f.script)
		if err != nil {
			return errors.Wrap(err, "opening script")
		}
		defer in.Close()
		c := cli.New(s)
		c.In = in
		c.Out = cmd.OutOrStdout()
		c.EchoInput = true
		c.Interp.SetTrace(f.trace)
		c.Run()
		return nil
	}

	// Use the plain CLI if asked to or stdout is not a terminal.
	if f.plain || !isTerminal() {
		c := cli.New(s)
		c.Out = cmd.OutOrStdout()
		c.Interp.SetTrace(f.trace)
		c.Run()
		return nil
	}

	return tui.Run(s, f.trace)
}

func newSlotsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "List save slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*f)
			if err != nil {
				return err
			}
			cfg.AutoSave = false
			s, err := session.Open(cfg)
			if err != nil {
				return err
			}
			defer s.Close()
			for _, line := range cli.SlotTable(s.Slots()) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and build metadata",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "atelier %s (commit %s, built %s, %s/%s)\n",
				version, commit, date, runtime.GOOS, runtime.GOARCH)
		},
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
