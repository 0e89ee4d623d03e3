package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sabitutor/sabi/internal/app"
	"github.com/sabitutor/sabi/internal/config"
	"github.com/sabitutor/sabi/internal/knowledge"
)

var (
	visualImageURL string
	visualRegion   string
)

var visualCmd = &cobra.Command{
	Use:   "visual [content...]",
	Short: "Add a single visual lesson entry to the knowledge base",
	Long: `Visual stores one hand-written entry with an illustration URL, so
retrieval can hand back a stored diagram instead of a synthesized one.
The content text is what gets embedded and matched against student
queries.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVisual,
}

func init() {
	visualCmd.Flags().StringVar(&visualImageURL, "image-url", "", "illustration URL stored with the entry (required)")
	visualCmd.Flags().StringVar(&visualRegion, "region", "Visual Diagram", "region tag for the entry")
	_ = visualCmd.MarkFlagRequired("image-url")
	rootCmd.AddCommand(visualCmd)
}

func runVisual(_ *cobra.Command, args []string) error {
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

	entry := knowledge.Entry{
		ID:       uuid.NewString(),
		Content:  strings.Join(args, " "),
		Region:   visualRegion,
		ImageURL: visualImageURL,
	}
	if err := a.Knowledge.Add(ctx, entry); err != nil {
		return fmt.Errorf("adding visual lesson: %w", err)
	}

	fmt.Printf("Added visual lesson %s\n", entry.ID)
	return nil
}
