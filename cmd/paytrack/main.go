// Command paytrack records shared expenses among groups of people.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"github.com/mmynk/paytrack/internal/config"
	"github.com/mmynk/paytrack/pkg/logging"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	register(subcommands.DefaultCommander)

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitFailure))
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	if err := logging.Setup(cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitUsageError))
	}

	a, err := openApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "backend", cfg.Backend, "error", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	slog.Debug("Storage initialized", "backend", cfg.Backend, "data_dir", cfg.DataDir)

	status := subcommands.Execute(context.Background(), a)

	if err := a.close(); err != nil {
		slog.Error("Failed to close storage", "error", err)
		if status == subcommands.ExitSuccess {
			status = subcommands.ExitFailure
		}
	}
	os.Exit(int(status))
}

// register adds the paytrack commands to c.
func register(c *subcommands.Commander) {
	c.Register(&personAddCmd{}, "persons")
	c.Register(&personShowCmd{}, "persons")
	c.Register(&personSetCmd{}, "persons")
	c.Register(&personRenameCmd{}, "persons")
	c.Register(&personRmCmd{}, "persons")

	c.Register(&groupAddCmd{}, "groups")
	c.Register(&groupShowCmd{}, "groups")
	c.Register(&groupJoinCmd{}, "groups")
	c.Register(&groupRenameCmd{}, "groups")
	c.Register(&groupRmCmd{}, "groups")

	c.Register(&payCmd{}, "payments")
	c.Register(&paymentsCmd{}, "payments")
}
