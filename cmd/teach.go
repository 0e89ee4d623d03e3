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
	"github.com/sabitutor/sabi/internal/prompt"
)

var (
	teachLanguage string
	teachMode     string
)

var teachCmd = &cobra.Command{
	Use:   "teach [subject]",
	Short: "Explain a topic with a culturally-grounded analogy",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTeach,
}

func init() {
	teachCmd.Flags().StringVar(&teachLanguage, "language", "english", `tone register: "english" or "pidgin"`)
	teachCmd.Flags().StringVar(&teachMode, "mode", "tutor", `narrative mode: "tutor" or "griot"`)
	rootCmd.AddCommand(teachCmd)
}

func runTeach(_ *cobra.Command, args []string) error {
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

	subject := strings.Join(args, " ")
	profile := prompt.Profile{
		Audience:  prompt.AudienceWeb,
		Tone:      prompt.ParseTone(teachLanguage),
		Narrative: prompt.ParseNarrative(teachMode),
	}
	reply := a.Tutor.Answer(ctx, subject, profile)

	fmt.Println(reply.Text)
	fmt.Println()
	fmt.Printf("Context: %s\n", reply.ContextNarrative)
	if reply.VisualURL != "" {
		fmt.Printf("Visual:  %s\n", reply.VisualURL)
	}
	return nil
}
