package cli

import (
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/monster2z/llm-rag-pro/internal/core/ports/driving"
)

var (
	uploadCategory    string
	uploadDescription string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload documents into the corpus",
	Long: `Uploads one or more documents: extracts text, chunks it, embeds the
chunks, and registers a new document version. Re-uploading a filename
within the same category creates the next version and deactivates the
previous one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadCategory, "category", "c", "general", "document category")
	uploadCmd.Flags().StringVarP(&uploadDescription, "description", "d", "", "version description")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	reqs := make([]driving.IngestRequest, len(args))
	for i, path := range args {
		reqs[i] = driving.IngestRequest{
			Path:        path,
			Category:    uploadCategory,
			Description: uploadDescription,
			Username:    asUser,
		}
	}

	bar := progressbar.NewOptions(len(reqs),
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var results []driving.IngestResult
	if len(reqs) == 1 {
		doc, err := ingestService.IngestFile(cmd.Context(), reqs[0])
		results = []driving.IngestResult{{Path: reqs[0].Path, Version: doc, Err: err}}
		bar.Add(1) //nolint:errcheck
	} else {
		results = ingestService.IngestBatch(cmd.Context(), reqs, func(driving.IngestResult) {
			bar.Add(1) //nolint:errcheck
		})
	}
	bar.Finish() //nolint:errcheck

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			cmd.Printf("  FAIL %s: %v\n", result.Path, result.Err)
			continue
		}
		cmd.Printf("  OK   %s -> v%d (%d chunks, category %s)\n",
			result.Path, result.Version.Version, result.Version.ChunkCount, result.Version.Category)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(results))
	}
	return nil
}
