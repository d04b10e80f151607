package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/revelare/revelare-web/internal/pagination"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/spf13/cobra"
)

const (
	booksPerPage = 10
	usersPerPage = 10
)

var (
	dashPage   int
	dashSearch string

	bookFlags models.BookForm
	pdfPath   string
	coverPath string

	userName     string
	userEmail    string
	userPassword bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Admin catalog and account management",
}

var dashBooksCmd = &cobra.Command{
	Use:   "books",
	Short: "Manage the book catalog",
}

var dashUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var dashBooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog books",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireAdmin()
		if err != nil {
			return err
		}
		resp, err := newClient().DashboardBooks(cmd.Context(), s.AccessToken, dashPage, dashSearch)
		if err != nil {
			return fmt.Errorf("Failed to fetch books: %w", explain(err))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d books", resp.TotalBooks)))
		controls := pagination.New(resp.CurrentPage, resp.TotalPages)
		for i, b := range resp.Data {
			n := (controls.Current-1)*booksPerPage + i + 1
			fmt.Fprintf(out, "  %4d  #%-6d %s  %s\n", n, b.ID, b.Title, mutedStyle.Render(b.AuthorDisplay()))
		}
		if controls.Total > 1 {
			fmt.Fprintln(out, pageLine(controls))
		}
		return nil
	},
}

var dashBooksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a book",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireAdmin()
		if err != nil {
			return err
		}
		form := bookFlags
		closeFiles, err := attachFiles(&form)
		if err != nil {
			return err
		}
		defer closeFiles()
		if err := form.Validate(); err != nil {
			return explain(err)
		}
		book, err := newClient().CreateBook(cmd.Context(), s.AccessToken, form)
		if err != nil {
			return fmt.Errorf("Failed to add book: %w", explain(err))
		}
		msg := "Book added successfully"
		if book != nil && book.ID != 0 {
			msg = fmt.Sprintf("%s (#%d)", msg, book.ID)
		}
		printSuccess(cmd.OutOrStdout(), msg)
		return nil
	},
}

var dashBooksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a book; unset flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireAdmin()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client := newClient()
		current, err := client.GetBook(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to load book %d: %w", id, explain(err))
		}

		form := models.BookFormFrom(*current)
		flags := cmd.Flags()
		override := map[string]*string{
			"title":             &form.Title,
			"authors":           &form.Authors,
			"editors":           &form.Editors,
			"publisher":         &form.Publisher,
			"published":         &form.Published,
			"isbn":              &form.ISBN,
			"description":       &form.Description,
			"table-of-contents": &form.TableOfContents,
		}
		for name, dst := range override {
			if flags.Changed(name) {
				*dst, _ = flags.GetString(name)
			}
		}
		closeFiles, err := attachFiles(&form)
		if err != nil {
			return err
		}
		defer closeFiles()
		if err := form.Validate(); err != nil {
			return explain(err)
		}
		if _, err := client.UpdateBook(cmd.Context(), s.AccessToken, id, form); err != nil {
			return fmt.Errorf("Failed to update book: %w", explain(err))
		}
		printSuccess(cmd.OutOrStdout(), "Book updated successfully")
		return nil
	},
}

var dashBooksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireAdmin()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if !confirm(cmd, fmt.Sprintf("Delete book %d?", id)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		if err := newClient().DeleteBook(cmd.Context(), s.AccessToken, id); err != nil {
			return fmt.Errorf("Failed to delete book: %w", explain(err))
		}
		printSuccess(cmd.OutOrStdout(), "Book deleted successfully")
		return nil
	},
}

var dashUsersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireAdmin()
		if err != nil {
			return err
		}
		users, err := newClient().ListUsers(cmd.Context(), s.AccessToken)
		if err != nil {
			return fmt.Errorf("Failed to fetch users: %w", explain(err))
		}
		filtered := models.FilterUsers(users, dashSearch)
		controls := pagination.New(dashPage, pagination.Pages(len(filtered), usersPerPage))
		page := pagination.Slice(filtered, controls.Current, usersPerPage)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d users", len(filtered))))
		for i, u := range page {
			n := (controls.Current-1)*usersPerPage + i + 1
			fmt.Fprintf(out, "  %4d  #%-5d %-24s %-28s %-6s %s\n", n, u.ID, u.Name, u.Email, u.Role, u.RegisteredDate())
		}
		if controls.Total > 1 {
			fmt.Fprintln(out, pageLine(controls))
		}
		return nil
	},
}

var dashUsersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireAdmin()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client := newClient()
		users, err := client.ListUsers(cmd.Context(), s.AccessToken)
		if err != nil {
			return fmt.Errorf("Failed to fetch users: %w", explain(err))
		}
		u, ok := models.FindUser(users, id)
		if !ok {
			return fmt.Errorf("user %d not found", id)
		}

		req := models.UpdateUserRequest{Name: u.Name, Email: u.Email}
		if cmd.Flags().Changed("name") {
			req.Name = userName
		}
		if cmd.Flags().Changed("email") {
			req.Email = userEmail
		}
		if userPassword {
			pw, err := readPassword(cmd, bufio.NewReader(cmd.InOrStdin()), "New password: ")
			if err != nil {
				return err
			}
			req.Password = pw
		}
		if err := req.Validate(); err != nil {
			return explain(err)
		}
		if err := client.UpdateUser(cmd.Context(), s.AccessToken, id, req); err != nil {
			return fmt.Errorf("Failed to update user: %w", explain(err))
		}
		printSuccess(cmd.OutOrStdout(), "User updated successfully")
		return nil
	},
}

var dashUsersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireAdmin()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if !confirm(cmd, fmt.Sprintf("Delete user %d?", id)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		if err := newClient().DeleteUser(cmd.Context(), s.AccessToken, id); err != nil {
			return fmt.Errorf("Failed to delete user: %w", explain(err))
		}
		printSuccess(cmd.OutOrStdout(), "User deleted successfully")
		return nil
	},
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// attachFiles opens --pdf and --cover into the form. The returned func
// closes whatever was opened.
func attachFiles(form *models.BookForm) (func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	open := func(path string) (*models.FileUpload, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		opened = append(opened, f)
		return &models.FileUpload{Filename: filepath.Base(path), Content: f}, nil
	}

	var err error
	if form.PDF, err = open(pdfPath); err != nil {
		closeAll()
		return func() {}, err
	}
	if form.Cover, err = open(coverPath); err != nil {
		closeAll()
		return func() {}, err
	}
	return closeAll, nil
}

func addBookFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&bookFlags.Title, "title", "", "book title")
	f.StringVar(&bookFlags.Authors, "authors", "", "authors")
	f.StringVar(&bookFlags.Editors, "editors", "", "editors")
	f.StringVar(&bookFlags.Publisher, "publisher", "", "publisher")
	f.StringVar(&bookFlags.Published, "published", "", "publication year")
	f.StringVar(&bookFlags.ISBN, "isbn", "", "ISBN")
	f.StringVar(&bookFlags.Description, "description", "", "description (HTML allowed)")
	f.StringVar(&bookFlags.TableOfContents, "table-of-contents", "", "table of contents (HTML allowed)")
	f.StringVar(&pdfPath, "pdf", "", "path of the PDF to upload")
	f.StringVar(&coverPath, "cover", "", "path of the cover image to upload")
}

func init() {
	dashBooksListCmd.Flags().IntVarP(&dashPage, "page", "p", 1, "page")
	dashBooksListCmd.Flags().StringVar(&dashSearch, "search", "", "filter by title")
	dashUsersListCmd.Flags().IntVarP(&dashPage, "page", "p", 1, "page")
	dashUsersListCmd.Flags().StringVar(&dashSearch, "search", "", "filter by name")

	addBookFlags(dashBooksCreateCmd)
	addBookFlags(dashBooksUpdateCmd)
	dashBooksDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	dashUsersUpdateCmd.Flags().StringVar(&userName, "name", "", "new name")
	dashUsersUpdateCmd.Flags().StringVar(&userEmail, "email", "", "new email")
	dashUsersUpdateCmd.Flags().BoolVar(&userPassword, "password", false, "prompt for a new password")
	dashUsersDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	dashBooksCmd.AddCommand(dashBooksListCmd, dashBooksCreateCmd, dashBooksUpdateCmd, dashBooksDeleteCmd)
	dashUsersCmd.AddCommand(dashUsersListCmd, dashUsersUpdateCmd, dashUsersDeleteCmd)
	dashboardCmd.AddCommand(dashBooksCmd, dashUsersCmd)
}
