package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Browse contacts and manage principal links",
	Long: `List mirrored contacts and link principals to them.

A linked principal sees only its contact's invoices and projects.`,
}

var contactListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	Args:  cobra.NoArgs,
	RunE:  runContactList,
}

var contactLinkCmd = &cobra.Command{
	Use:   "link [principal-id] [contact-id]",
	Short: "Link a principal to a contact",
	Args:  cobra.ExactArgs(2),
	RunE:  runContactLink,
}

var contactUnlinkCmd = &cobra.Command{
	Use:   "unlink [principal-id]",
	Short: "Remove a principal's contact link",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactUnlink,
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Browse mirrored projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

func init() {
	contactCmd.AddCommand(contactListCmd)
	contactCmd.AddCommand(contactLinkCmd)
	contactCmd.AddCommand(contactUnlinkCmd)
	rootCmd.AddCommand(contactCmd)

	projectCmd.AddCommand(projectListCmd)
	rootCmd.AddCommand(projectCmd)
}

func runContactList(cmd *cobra.Command, _ []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	contacts, err := r.Mirror.ListContacts(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}
	if len(contacts) == 0 {
		cmd.Println("No contacts found. Run 'ledgerbridge sync contacts' first.")
		return nil
	}

	cmd.Println(contactTable(contacts))
	cmd.Printf("Total: %d contacts\n", len(contacts))
	return nil
}

func runContactLink(cmd *cobra.Command, args []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	if err := r.Mirror.Link(cmd.Context(), p, args[0], args[1]); err != nil {
		return fmt.Errorf("failed to link principal: %w", err)
	}
	cmd.Printf("Linked %s to contact %s\n", args[0], args[1])
	return nil
}

func runContactUnlink(cmd *cobra.Command, args []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	if err := r.Mirror.Unlink(cmd.Context(), p, args[0]); err != nil {
		return fmt.Errorf("failed to unlink principal: %w", err)
	}
	cmd.Printf("Unlinked %s\n", args[0])
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	projects, err := r.Mirror.ListProjects(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		cmd.Println("No projects found.")
		return nil
	}

	cmd.Println(projectTable(projects))
	cmd.Printf("Total: %d projects\n", len(projects))
	return nil
}
