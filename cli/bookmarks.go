package cli

import (
	"fmt"
	"strconv"

	"github.com/revelare/revelare-web/pkg/models"
	"github.com/spf13/cobra"
)

var bookmarkCmd = &cobra.Command{
	Use:     "bookmark",
	Aliases: []string{"bookmarks"},
	Short:   "Manage your saved books",
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved books",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSession()
		if err != nil {
			return err
		}
		list, err := newClient().ListBookmarks(cmd.Context(), s.AccessToken, s.ID)
		if err != nil {
			return fmt.Errorf("failed to load bookmarks: %w", explain(err))
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No bookmarks yet.")
			return nil
		}
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d bookmarks", len(list))))
		for _, b := range list {
			fmt.Fprintf(out, "  %5d  book %-6d %s\n", b.ID, b.BookID, b.BookTitle)
		}
		return nil
	},
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <book-id>",
	Short: "Save a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSession()
		if err != nil {
			return err
		}
		bookID, err := strconv.Atoi(args[0])
		if err != nil || bookID < 1 {
			return fmt.Errorf("invalid book id %q", args[0])
		}
		userID, err := strconv.Atoi(s.ID)
		if err != nil {
			return fmt.Errorf("stored session has an invalid user id %q", s.ID)
		}
		req := models.AddBookmarkRequest{UserID: userID, BookID: bookID}
		if err := newClient().AddBookmark(cmd.Context(), s.AccessToken, req); err != nil {
			return fmt.Errorf("Failed to save bookmark: %w", explain(err))
		}
		printSuccess(cmd.OutOrStdout(), "Book saved to bookmarks")
		return nil
	},
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:   "remove <bookmark-id>",
	Short: "Remove a saved book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSession()
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil || id < 1 {
			return fmt.Errorf("invalid bookmark id %q", args[0])
		}
		if !confirm(cmd, fmt.Sprintf("Remove bookmark %d?", id)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		if err := newClient().DeleteBookmark(cmd.Context(), s.AccessToken, id); err != nil {
			return fmt.Errorf("Failed to remove bookmark: %w", explain(err))
		}
		printSuccess(cmd.OutOrStdout(), "Bookmark removed")
		return nil
	},
}

func init() {
	bookmarkRemoveCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	bookmarkCmd.AddCommand(bookmarkListCmd)
	bookmarkCmd.AddCommand(bookmarkAddCmd)
	bookmarkCmd.AddCommand(bookmarkRemoveCmd)
}
