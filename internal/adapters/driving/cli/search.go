package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

var (
	searchMaxResults    int
	searchMinSimilarity float64
	searchCategory      string
	searchOffset        int
	searchCursor        string
	searchSnippets      bool
	searchJSON          bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents by meaning",
	Long: `Embeds the query and ranks every indexed chunk by cosine similarity.

Results are ordered by descending similarity with deterministic
tie-breaking. Pages are fetched either by --offset or by passing the
cursor printed with the previous page to --cursor.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchMaxResults, "max-results", "n", 0, "maximum number of results (default 10)")
	searchCmd.Flags().Float64Var(&searchMinSimilarity, "min-similarity", 0, "discard results scoring below this, in [0, 1]")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict to one category: tutorial, howto, reference or explanation")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of ranked results to skip")
	searchCmd.Flags().StringVar(&searchCursor, "cursor", "", "resume after a previous page's cursor")
	searchCmd.Flags().BoolVar(&searchSnippets, "snippets", true, "extract query-term snippets per result")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the result page as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		MaxResults:      searchMaxResults,
		MinSimilarity:   searchMinSimilarity,
		Offset:          searchOffset,
		Cursor:          searchCursor,
		IncludeSnippets: searchSnippets,
	}
	if searchCategory != "" {
		category, err := domain.ParseCategory(searchCategory)
		if err != nil {
			return fmt.Errorf("unknown category %q", searchCategory)
		}
		opts.Category = &category
	}

	page, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, page)
	}
	return outputSearchTable(cmd, page)
}

func outputSearchJSON(cmd *cobra.Command, page *domain.SearchPage) error {
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, page *domain.SearchPage) error {
	if len(page.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results for %q:\n", page.Query)
	cmd.Println()
	for i, result := range page.Results {
		title := result.Title
		if title == "" {
			title = result.SourceFile
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, result.Similarity)
		cmd.Printf("      File: %s\n", result.SourceFile)
		if result.Category != nil {
			cmd.Printf("      Category: %s\n", *result.Category)
		}
		if result.Snippet != "" {
			cmd.Printf("      %s\n", result.Snippet)
		}
		cmd.Println()
	}

	cmd.Printf("Showing %d of %d matching chunks.\n", len(page.Results), page.TotalResults)
	if page.HasMore {
		cmd.Printf("More results: semdex search --cursor %s %q\n", page.NextCursor, page.Query)
	}
	return nil
}
