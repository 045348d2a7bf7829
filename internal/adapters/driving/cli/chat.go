package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

var chatCategory string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session over the document corpus",
	Long: `Starts an interactive session. Each question is answered from the
uploaded documents and the conversation is persisted, so follow-up
questions keep their context. Type /quit to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatCategory, "category", "c", "", "prefer documents in this category")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("chat requires a configured LLM provider")
	}

	ctx := cmd.Context()
	conv, err := conversationService.Create(ctx, asUser, "")
	if err != nil {
		return err
	}

	prompt := color.New(color.FgCyan, color.Bold)
	answerColor := color.New(color.FgGreen)
	out := cmd.OutOrStdout()

	cmd.Printf("Chat started (conversation %s). Type /quit to exit.\n\n", conv.ID[:8])

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		prompt.Fprint(out, "you> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "/quit" || question == "/exit" {
			break
		}

		history, err := conversationService.History(ctx, conv.ID)
		if err != nil {
			return err
		}

		state, err := askService.Ask(ctx, question, asUser, history, domain.RetrieveOptions{
			Category: chatCategory,
		})
		if err != nil {
			return err
		}

		answerColor.Fprintln(out, state.Answer)
		cmd.Println()

		if err := conversationService.Append(ctx, conv.ID, domain.RoleUser, question); err != nil {
			return err
		}
		if err := conversationService.Append(ctx, conv.ID, domain.RoleAssistant, state.Answer); err != nil {
			return err
		}
	}

	return scanner.Err()
}
