package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"fintrack/internal/app"
	"fintrack/internal/models"
	"fintrack/internal/store"
)

func categories(ctx context.Context, a *app.App, args []string) error {
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
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, c := range st.Categories() {
			owner := "own"
			if c.IsDefault {
				owner = "built-in"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, c.Color, owner)
		}
		return w.Flush()

	case "add":
		fs := flag.NewFlagSet("categories add", flag.ContinueOnError)
		var in store.NewCategory
		var catType string
		fs.StringVar(&in.Name, "name", "", "category name")
		fs.StringVar(&in.Icon, "icon", "", "icon name")
		fs.StringVar(&in.Color, "color", "", "colour as #RRGGBB")
		fs.StringVar(&catType, "type", string(models.CategoryTypeExpense), "income or expense")
		if err := fs.Parse(args); err != nil {
			return err
		}
		in.Type = models.CategoryType(catType)
		c, err := st.AddCategory(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("Added category %s (%s)\n", c.Name, c.ID)
		return nil

	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: fintrack categories rm ID")
		}
		if err := st.DeleteCategory(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted category %s\n", args[0])
		return nil
	}
	return fmt.Errorf("unknown categories subcommand %q", sub)
}

func profile(ctx context.Context, a *app.App, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}

	switch sub {
	case "show":
		printProfile(st.Profile())
		return nil

	case "set":
		fs := flag.NewFlagSet("profile set", flag.ContinueOnError)
		name := fs.String("name", "", "full name")
		currency := fs.String("currency", "", "ISO 4217 code")
		theme := fs.String("theme", "", "dark, light or system")
		limit := fs.String("limit", "", "monthly spending limit, 0 disables it")
		if err := fs.Parse(args); err != nil {
			return err
		}

		var in models.ProfileUpdate
		var parseErr error
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				in.FullName = name
			case "currency":
				in.Currency = currency
			case "theme":
				t := models.Theme(*theme)
				in.Theme = &t
			case "limit":
				d, err := parseAmount(*limit)
				if err != nil {
					parseErr = err
					return
				}
				in.MonthlyLimit = &d
			}
		})
		if parseErr != nil {
			return parseErr
		}

		p, err := st.UpdateProfile(ctx, in)
		if err != nil {
			return err
		}
		printProfile(p)
		return nil
	}
	return fmt.Errorf("unknown profile subcommand %q", sub)
}

func printProfile(p models.Profile) {
	fmt.Printf("Name:          %s\n", p.FullName)
	fmt.Printf("Currency:      %s\n", p.Currency)
	fmt.Printf("Theme:         %s\n", p.Theme)
	fmt.Printf("Monthly limit: %s\n", p.MonthlyLimit.StringFixed(2))
	if p.AvatarURL != "" {
		fmt.Printf("Avatar:        %s\n", p.AvatarURL)
	}
}

func avatar(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: fintrack avatar FILE")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(args[0]))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}
	url, err := st.UploadAvatar(ctx, filepath.Base(args[0]), contentType, f)
	if err != nil {
		return err
	}
	fmt.Printf("Avatar uploaded: %s\n", url)
	return nil
}
