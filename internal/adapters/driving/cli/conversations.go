package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"convs"},
	Short:   "Manage chat conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your conversations",
	RunE:  runConversationsList,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Show a conversation's turns",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

var conversationsRenameCmd = &cobra.Command{
	Use:   "rename [conversation-id] [title]",
	Short: "Rename a conversation",
	Args:  cobra.ExactArgs(2),
	RunE:  runConversationsRename,
}

var conversationsArchiveCmd = &cobra.Command{
	Use:   "archive [conversation-id]",
	Short: "Hide a conversation from listings",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsArchive,
}

func init() {
	conversationsCmd.AddCommand(conversationsListCmd, conversationsShowCmd,
		conversationsRenameCmd, conversationsArchiveCmd)
	rootCmd.AddCommand(conversationsCmd)
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}

	convs, err := conversationService.List(cmd.Context(), asUser)
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		cmd.Println("No conversations.")
		return nil
	}

	for _, conv := range convs {
		cmd.Printf("  %s  %-40s %s\n",
			conv.ID[:8], conv.Title, conv.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}

	turns, err := conversationService.History(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	for _, turn := range turns {
		cmd.Printf("[%s] %s\n", turn.Role, turn.Content)
	}
	return nil
}

func runConversationsRename(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}
	return conversationService.Rename(cmd.Context(), args[0], args[1])
}

func runConversationsArchive(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}
	return conversationService.Archive(cmd.Context(), args[0])
}
