// Command fintrack is the offline-first client: it keeps a local cache of
// the signed-in user's finances, queues changes while the backend is
// unreachable and replays them on reconnect.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"fintrack/internal/app"
	"fintrack/internal/config"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app.App, args []string) error
}

var commands = map[string]command{
	"signup":     {"signup -email E -password P", signUp},
	"verify":     {"verify -email E -code 123456", verify},
	"login":      {"login -email E -password P", login},
	"logout":     {"logout", logout},
	"status":     {"status", status},
	"add":        {"add -type expense -amount 12.50 -category 1 [-title T] [-note N] [-date 2006-01-02]", addTransaction},
	"edit":       {"edit -id ID [-type T] [-amount A] [-category C] [-title T] [-note N] [-date D]", editTransaction},
	"rm":         {"rm ID", removeTransaction},
	"list":       {"list [-type all|income|expense] [-category ID] [-q TEXT] [-from D] [-to D] [-sort date_desc]", listTransactions},
	"summary":    {"summary", summary},
	"categories": {"categories [list | add -name N -color #RRGGBB -type T [-icon I] | rm ID]", categories},
	"profile":    {"profile [show | set [-name N] [-currency C] [-theme T] [-limit L]]", profile},
	"avatar":     {"avatar FILE", avatar},
	"export":     {"export [-o FILE]", exportXLSX},
	"import":     {"import FILE", importXLSX},
	"sync":       {"sync [-watch]", syncNow},
	"pending":    {"pending [list | discard ID]", pending},
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, cmd, flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, cmd command, args []string) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Get().Warnw("Closing cache failed", "error", err)
		}
	}()
	return cmd.run(ctx, a, args)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fintrack <command> [flags]")
	fmt.Fprintln(os.Stderr)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

// describe renders user-facing errors by message only; anything else keeps
// its full chain.
func describe(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return fmt.Sprintf("%s (%s)", appErr.Message, appErr.Code)
	}
	return err.Error()
}
