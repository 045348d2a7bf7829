package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	docsCategory  string
	docsPermanent bool
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage document versions",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active document versions",
	RunE:  runDocsList,
}

var docsHistoryCmd = &cobra.Command{
	Use:   "history [filename]",
	Short: "Show every version of a document family",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsHistory,
}

var docsDeactivateCmd = &cobra.Command{
	Use:   "deactivate [doc-id]",
	Short: "Remove a version from retrieval without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDeactivate,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document version",
	Long: `Deletes a document version. By default this is a soft delete that only
removes the version from retrieval. With --permanent the registry row and
the on-disk index are removed and a deletion entry is written to the
version log.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsDelete,
}

var docsLogCmd = &cobra.Command{
	Use:   "log [doc-id]",
	Short: "Show the version-change log for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsLog,
}

func init() {
	docsListCmd.Flags().StringVarP(&docsCategory, "category", "c", "", "filter by category")
	docsHistoryCmd.Flags().StringVarP(&docsCategory, "category", "c", "general", "document category")
	docsDeleteCmd.Flags().BoolVar(&docsPermanent, "permanent", false, "remove the registry row and index artifact")

	docsCmd.AddCommand(docsListCmd, docsHistoryCmd, docsDeactivateCmd, docsDeleteCmd, docsLogCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.ListActive(cmd.Context(), docsCategory)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Println("No active documents.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("  %s  %-30s v%-3d %-12s %4d chunks  by %s\n",
			doc.DocID[:8], doc.Filename, doc.Version, doc.Category, doc.ChunkCount, doc.UploadedBy)
	}
	return nil
}

func runDocsHistory(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.History(cmd.Context(), args[0], docsCategory)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Printf("No versions of %s in category %s.\n", args[0], docsCategory)
		return nil
	}

	for _, doc := range docs {
		status := "inactive"
		if doc.IsActive {
			status = "active"
		}
		cmd.Printf("  v%-3d %s  %-8s %s  %s\n",
			doc.Version, doc.DocID[:8], status,
			doc.UploadTime.Format("2006-01-02 15:04"), doc.Description)
	}
	return nil
}

func runDocsDeactivate(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Deactivate(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deactivated %s.\n", args[0])
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(cmd.Context(), args[0], docsPermanent, asUser); err != nil {
		return err
	}
	if docsPermanent {
		cmd.Printf("Permanently deleted %s.\n", args[0])
	} else {
		cmd.Printf("Deleted %s (soft).\n", args[0])
	}
	return nil
}

func runDocsLog(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	entries, err := documentService.VersionLog(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		cmd.Println("No version log entries.")
		return nil
	}

	for _, e := range entries {
		cmd.Printf("  v%d -> v%d  %s  by %s  %s\n",
			e.PreviousVersion, e.NewVersion,
			e.ChangedAt.Format("2006-01-02 15:04"), e.ChangedBy, e.ChangeDescription)
	}
	return nil
}
