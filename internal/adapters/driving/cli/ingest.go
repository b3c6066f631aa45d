package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
	"github.com/dochaven/docq-cli/internal/extractors"
	"github.com/dochaven/docq-cli/internal/watcher"
)

var (
	ingestCollection   string
	ingestChunkSize    int
	ingestChunkOverlap int
	ingestWatch        bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a file or directory into a collection",
	Long: `Ingests documents into a named collection. The path may be a single
file or a directory; directories are walked recursively and hidden
files are skipped.

Text is extracted, split into overlapping chunks, embedded, and stored.
Re-ingesting an unchanged file is a no-op; a changed file replaces its
previous chunks.

With --watch, docq keeps running after the initial ingestion and
re-ingests files as they change on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "default",
		"target collection")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0,
		"chunk size in characters (0 = configured default)")
	ingestCmd.Flags().IntVar(&ingestChunkOverlap, "chunk-overlap", -1,
		"chunk overlap in characters (-1 = configured default)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false,
		"keep watching the path and re-ingest on change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %q: %w", path, err)
	}

	opts := driving.IngestOptions{
		ChunkSize:    ingestChunkSize,
		ChunkOverlap: ingestChunkOverlap,
	}

	var files []string
	if info.IsDir() {
		files, err = collectFiles(path)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			cmd.Println("No ingestible files found.")
		}
	} else {
		files = []string{path}
	}

	var ingested, failed int
	for _, file := range files {
		receipt, err := ingestOne(cmd, file, opts)
		if err != nil {
			failed++
			cmd.PrintErrf("  %s: %v\n", file, err)
			continue
		}
		ingested++
		cmd.Printf("  %s: %d chunks -> %s\n",
			receipt.Filename, receipt.TotalChunks, receipt.Collection)
	}

	cmd.Printf("Ingested %d file(s) into %q", ingested, ingestCollection)
	if failed > 0 {
		cmd.Printf(", %d failed", failed)
	}
	cmd.Println()

	if !ingestWatch {
		if failed > 0 {
			return fmt.Errorf("%d file(s) failed to ingest", failed)
		}
		return nil
	}

	if !info.IsDir() {
		return errors.New("--watch requires a directory path")
	}
	return runWatch(cmd, path, opts)
}

func ingestOne(cmd *cobra.Command, path string, opts driving.IngestOptions) (*domain.IngestReceipt, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := &domain.RawFile{
		Name:     filepath.Base(path),
		MIMEType: extractors.DetectMIMEType(path),
		Content:  content,
	}
	return ingestService.IngestFile(cmd.Context(), ingestCollection, raw, opts)
}

// collectFiles walks dir and returns every non-hidden regular file.
func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && d.Name() != "." && d.Name() != ".." {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", dir, err)
	}
	return files, nil
}

func runWatch(cmd *cobra.Command, dir string, opts driving.IngestOptions) error {
	w, err := watcher.New(ingestService, watcher.Config{
		Collection: ingestCollection,
		Options:    opts,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (ctrl-c to stop)\n", dir)
	if err := w.Watch(ctx, dir); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
