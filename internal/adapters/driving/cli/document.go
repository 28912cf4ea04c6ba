package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage stored documents",
	Long:  `List, view, print or delete stored documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the owner's documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its stored file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := ensureServices(ctx); err != nil {
		return err
	}
	owner, err := requireOwner()
	if err != nil {
		return err
	}

	docs, err := documentService.ListByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found for owner: %s\n", owner)
		return nil
	}

	cmd.Printf("Documents for %s:\n\n", owner)
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:     %s\n", docs[i].OriginalName)
		cmd.Printf("    Uploaded: %s\n", docs[i].CreatedAt.Format("2006-01-02 15:04:05"))
		if docs[i].ContentFingerprint == nil {
			cmd.Println("    Fingerprint: missing (run 'intake backfill')")
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := ensureServices(ctx); err != nil {
		return err
	}

	details, err := documentService.GetDetails(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	fp := details.ContentFingerprint
	if fp == "" {
		fp = "(not computed)"
	}

	cmd.Printf("Document: %s\n\n", details.ID)
	cmd.Printf("  Name:        %s\n", details.OriginalName)
	cmd.Printf("  Owner:       %s\n", details.OwnerID)
	cmd.Printf("  Type:        %s\n", details.MIMEType)
	cmd.Printf("  Size:        %d bytes\n", details.Size)
	cmd.Printf("  Fingerprint: %s\n", fp)
	cmd.Printf("  Chunks:      %d\n", details.ChunkCount)
	cmd.Printf("  Created:     %s\n", details.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:     %s\n", details.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := ensureServices(ctx); err != nil {
		return err
	}

	content, err := documentService.GetContent(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	cmd.Println(content)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := ensureServices(ctx); err != nil {
		return err
	}

	if err := documentService.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}
