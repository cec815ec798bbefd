// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

// Command sessionctl is a small terminal client for the Lantern auth API,
// built on the same session controller the embedding applications use.
//
// # Usage
//
//	sessionctl login -user you@example.com [-remember]
//	sessionctl me
//	sessionctl logout
//	sessionctl reset-password -email you@example.com
//
// The server address comes from LANTERN_API_URL (default
// http://localhost:8080). A remembered session is stored under
// ~/.lantern/auth-token.json and picked up by later invocations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"

	"github.com/kimdahyun/lantern/internal/platform/constants"
	"github.com/kimdahyun/lantern/pkg/session"
)

const defaultAPIURL = "http://localhost:8080"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	controller := session.NewController(apiURL(),
		session.WithTokenStore(session.NewFileTokenStore(tokenPath())),
		session.WithTimeout(10*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, controller, os.Args[2:])
	case "me":
		err = runMe(ctx, controller)
	case "logout":
		err = runLogout(ctx, controller)
	case "reset-password":
		err = runResetPassword(ctx, controller, os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runLogin(ctx context.Context, controller *session.Controller, args []string) error {
	flags := flag.NewFlagSet("login", flag.ExitOnError)
	user := flags.String("user", "", "email or phone number")
	remember := flags.Bool("remember", false, "keep the session across invocations")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return fmt.Errorf("missing -user flag")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if !controller.Login(ctx, *user, password, *remember) {
		return stateError(controller)
	}

	state := controller.State()
	fmt.Printf("logged in as %s (%s)\n", state.User.Name, state.User.Email)
	return nil
}

func runMe(ctx context.Context, controller *session.Controller) error {
	if !controller.Restore(ctx) {
		return fmt.Errorf("no active session, run `sessionctl login` first")
	}

	user := controller.State().User
	fmt.Printf("id:       %s\n", user.ID)
	fmt.Printf("email:    %s\n", user.Email)
	if user.Phone != "" {
		fmt.Printf("phone:    %s\n", user.Phone)
	}
	fmt.Printf("name:     %s\n", user.Name)
	fmt.Printf("verified: %t\n", user.Verified)
	return nil
}

func runLogout(ctx context.Context, controller *session.Controller) error {
	// Resume the stored session first so the server call carries the token.
	// Logout clears local state regardless of the outcome.
	controller.Restore(ctx)
	controller.Logout(ctx)
	fmt.Println("logged out")
	return nil
}

func runResetPassword(ctx context.Context, controller *session.Controller, args []string) error {
	flags := flag.NewFlagSet("reset-password", flag.ExitOnError)
	email := flags.String("email", "", "account email address")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("missing -email flag")
	}

	if !controller.RequestPasswordReset(ctx, *email) {
		return stateError(controller)
	}

	fmt.Println("if this email is registered, a reset link has been sent")
	return nil
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read_password: %w", err)
	}
	return string(raw), nil
}

// stateError turns the controller's error state into a CLI error.
func stateError(controller *session.Controller) error {
	state := controller.State()
	if len(state.FieldErrors) > 0 {
		for field, code := range state.FieldErrors {
			return fmt.Errorf("%s: %s", field, code)
		}
	}
	if state.Err != "" {
		return fmt.Errorf("%s", state.Err)
	}
	return fmt.Errorf("request failed")
}

func apiURL() string {
	if url := os.Getenv("LANTERN_API_URL"); url != "" {
		return url
	}
	return defaultAPIURL
}

func tokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	// The slot name is shared with browser hosts, which use it as a cookie name.
	return filepath.Join(home, ".lantern", constants.TokenSlotName+".json")
}

func usage() {
	fmt.Fprintln(os.Stderr, `sessionctl - Lantern session client

commands:
  login -user <email|phone> [-remember]   authenticate and start a session
  me                                      show the current account
  logout                                  end the session
  reset-password -email <email>           request a password reset link

environment:
  LANTERN_API_URL   API base URL (default http://localhost:8080)`)
}
