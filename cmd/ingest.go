package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sabitutor/sabi/internal/app"
	"github.com/sabitutor/sabi/internal/config"
	"github.com/sabitutor/sabi/internal/ingest"
)

var (
	ingestRegion string
	ingestTopic  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [sources-file]",
	Short: "Load teaching material into the knowledge base",
	Long: `Ingest reads a sources file with one source per line (a URL or a
path to a PDF), extracts the text, splits it into overlapping chunks,
and stores each chunk with its embedding. Blank lines and lines starting
with # are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestRegion, "region", "", `region tag for the material, e.g. "Lagos" (default "Global")`)
	ingestCmd.Flags().StringVar(&ingestTopic, "topic", "", `topic metadata, e.g. "General" to feed the fallback tier`)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, args []string) error {
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

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening sources file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var totalAdded, sourcesSkipped int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		source := strings.TrimSpace(scanner.Text())
		if source == "" || strings.HasPrefix(source, "#") {
			continue
		}

		opts := ingest.Options{Region: ingestRegion, Topic: ingestTopic}
		var result ingest.Result
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			result, err = a.Ingestor.IngestURL(ctx, source, opts)
		} else {
			result, err = a.Ingestor.IngestPDF(ctx, source, opts)
		}
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", source, err)
		}

		if result.Skipped {
			fmt.Printf("%s: skipped, text too short\n", source)
			sourcesSkipped++
			continue
		}
		fmt.Printf("%s: %d chunks added\n", source, result.ChunksAdded)
		totalAdded += result.ChunksAdded
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading sources file: %w", err)
	}

	fmt.Printf("Done: %d chunks added, %d sources skipped\n", totalAdded, sourcesSkipped)
	return nil
}
