package main

import (
	"context"
	"flag"
	"fmt"

	"fintrack/internal/app"
	"fintrack/internal/store"
)

func credentials(name string, args []string) (email, password string, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&password, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	if email == "" || password == "" {
		return "", "", fmt.Errorf("%s needs -email and -password", name)
	}
	return email, password, nil
}

func signUp(ctx context.Context, a *app.App, args []string) error {
	email, password, err := credentials("signup", args)
	if err != nil {
		return err
	}
	if err := a.SignUp(ctx, email, password); err != nil {
		return err
	}
	fmt.Printf("A confirmation code was sent to %s. Run: fintrack verify -email %s -code <code>\n", email, email)
	return nil
}

func verify(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	code := fs.String("code", "", "six-digit code from the email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := a.Verify(ctx, *email, *code)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", *email)
	printStatus(a, st)
	return nil
}

func login(ctx context.Context, a *app.App, args []string) error {
	email, password, err := credentials("login", args)
	if err != nil {
		return err
	}
	st, err := a.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", email)
	printStatus(a, st)
	return nil
}

func logout(ctx context.Context, a *app.App, _ []string) error {
	if err := a.SignOut(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func status(ctx context.Context, a *app.App, _ []string) error {
	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}
	printStatus(a, st)
	return nil
}

func printStatus(a *app.App, st *store.Store) {
	conn := "offline"
	if a.Online() {
		conn = "online"
	}
	n, err := st.Pending(context.Background())
	queued := "?"
	if err == nil {
		queued = fmt.Sprint(len(n))
	}
	fmt.Printf("User:         %s\n", st.Session().UserID)
	fmt.Printf("Connectivity: %s\n", conn)
	fmt.Printf("Transactions: %d\n", len(st.Transactions()))
	fmt.Printf("Categories:   %d\n", len(st.Categories()))
	fmt.Printf("Queued:       %s\n", queued)
}
