package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"fintrack/internal/app"
	"fintrack/internal/logger"
)

func syncNow(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	watch := fs.Bool("watch", false, "keep running and sync on every reconnect")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}

	if *watch {
		logger.Get().Infow("Watching connectivity", "online", a.Online())
		return a.Watch(ctx)
	}

	res, err := st.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Synced %d operation(s), %d left\n", len(res.Applied), res.Remaining)
	if res.Failed != nil {
		fmt.Printf("Stopped at %s: %v\n", res.Failed.String(), res.Err)
	}
	return nil
}

func pending(ctx context.Context, a *app.App, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		ops, err := st.Pending(ctx)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("Nothing queued")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, op := range ops {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", op.ID, op.Action, op.Kind, op.EntityID, op.EnqueuedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()

	case "discard":
		if len(args) != 1 {
			return fmt.Errorf("usage: fintrack pending discard ID")
		}
		if err := st.Discard(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Discarded %s\n", args[0])
		return nil
	}
	return fmt.Errorf("unknown pending subcommand %q", sub)
}
