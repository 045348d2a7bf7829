package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories across active documents",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	categories, err := documentService.Categories(cmd.Context())
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		cmd.Println("No categories yet.")
		return nil
	}

	for _, c := range categories {
		cmd.Println("  " + c)
	}
	return nil
}
