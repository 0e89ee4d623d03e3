package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sabitutor/sabi/internal/app"
	"github.com/sabitutor/sabi/internal/config"
)

var quizCmd = &cobra.Command{
	Use:   "quiz [subject]",
	Short: "Generate a 5-question multiple-choice quiz for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuiz,
}

func init() {
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		_ = a.Close()
	}()

	fmt.Println(a.Tutor.Quiz(ctx, strings.Join(args, " ")))
	return nil
}
