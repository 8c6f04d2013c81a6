package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statusDocuments bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index statistics",
	Long:  `Prints the number of indexed documents and chunks in the local store.`,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusDocuments, "documents", false, "list every indexed document with its content hash")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if chunkStore == nil {
		return errors.New("chunk store not configured")
	}

	ctx := cmd.Context()
	hashes, err := chunkStore.FileHashes(ctx)
	if err != nil {
		return fmt.Errorf("failed to read file hashes: %w", err)
	}
	total, err := chunkStore.CountChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	cmd.Printf("Documents: %d\n", len(hashes))
	cmd.Printf("Chunks:    %d\n", total)

	if !statusDocuments {
		return nil
	}

	paths := make([]string, 0, len(hashes))
	for path := range hashes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	cmd.Println()
	for _, path := range paths {
		cmd.Printf("  %s  %s\n", hashes[path], path)
	}
	return nil
}
