package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"golang.org/x/term"

	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
)

const authTimeout = 30 * time.Second

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

// runSignIn prompts for credentials, authenticates and saves the session.
// With register set a new account is created first.
func runSignIn(ctx context.Context, auth domain.AuthRepository, cfg *config.Config, register bool) error {
	fmt.Println()
	if register {
		fmt.Println("Create a marquee account")
	} else {
		fmt.Println("Sign in to marquee")
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━")

	reader := bufio.NewReader(os.Stdin)

	var name string
	if register {
		var err error
		if name, err = prompt(reader, "Name: "); err != nil {
			return err
		}
	}

	email, err := prompt(reader, "Email: ")
	if err != nil {
		return err
	}
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	// Prompt for password (hidden input)
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := string(passwordBytes)
	fmt.Println()

	result, err := withSpinner(ctx, "Authenticating...", func(ctx context.Context) (*domain.AuthResult, error) {
		if register {
			return auth.Register(ctx, name, email, password)
		}
		return auth.Login(ctx, email, password)
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	session := config.SessionConfig{
		Token: result.Token,
		Name:  result.User.Name,
		Email: result.User.Email,
		Role:  result.User.Role,
	}
	cfg.Session = session
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Printf("✓ Signed in as %s", session.Name)
	if result.User.IsAdmin() {
		fmt.Print(" (admin)")
	}
	fmt.Println()
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// withSpinner runs fn while animating a spinner on the current line
func withSpinner[T any](ctx context.Context, label string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		v, err := fn(ctx)
		resultCh <- result{v, err}
	}()

	frames := spinner.MiniDot.Frames
	frame := 0
	fmt.Printf("\r%s %s", frames[frame], label)

	ticker := time.NewTicker(spinner.MiniDot.FPS)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			return res.value, res.err

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s %s", frames[frame%len(frames)], label)

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			var zero T
			return zero, fmt.Errorf("timed out")
		}
	}
}
