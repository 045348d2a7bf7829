package cli

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

var (
	askCategory     string
	askTopK         int
	askConversation string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question grounded in the uploaded documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCategory, "category", "c", "", "prefer documents in this category")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve")
	askCmd.Flags().StringVar(&askConversation, "conversation", "", "continue an existing conversation by id")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask requires a configured LLM provider")
	}
	ctx := cmd.Context()
	question := args[0]

	var history []domain.ConversationTurn
	if askConversation != "" {
		var err error
		history, err = conversationService.History(ctx, askConversation)
		if err != nil {
			return err
		}
	}

	state, err := askService.Ask(ctx, question, asUser, history, domain.RetrieveOptions{
		K:        askTopK,
		Category: askCategory,
	})
	if err != nil {
		return err
	}

	if askConversation != "" {
		if err := conversationService.Append(ctx, askConversation, domain.RoleUser, question); err != nil {
			return err
		}
		if err := conversationService.Append(ctx, askConversation, domain.RoleAssistant, state.Answer); err != nil {
			return err
		}
	}

	cmd.Println(state.Answer)
	if state.NeedMoreInfo {
		cmd.Println()
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(),
			"The documents did not cover this question. Consider uploading more material.")
	}
	return nil
}
