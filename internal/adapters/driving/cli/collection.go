package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collections",
	Long:  `List collections, inspect their statistics, and delete documents.`,
	RunE:  runCollectionList,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all collections and their documents",
	RunE:  runCollectionList,
}

var collectionInfoCmd = &cobra.Command{
	Use:   "info [name]",
	Short: "Show statistics for a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionInfo,
}

var collectionDeleteDocCmd = &cobra.Command{
	Use:   "delete-doc [collection] [document-id]",
	Short: "Delete a document and all its chunks from a collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runCollectionDeleteDoc,
}

func init() {
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionInfoCmd)
	collectionCmd.AddCommand(collectionDeleteDocCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionList(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	summaries, err := collectionService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	if len(summaries) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	for _, summary := range summaries {
		cmd.Printf("%s (%d documents)\n", summary.Name, len(summary.Documents))
		for _, doc := range summary.Documents {
			cmd.Printf("  %s  %s\n", doc.DocumentID, doc.Filename)
		}
	}
	return nil
}

func runCollectionInfo(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	info, err := collectionService.Info(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("collection info: %w", err)
	}

	cmd.Printf("Collection: %s\n", info.Name)
	cmd.Printf("Documents:  %d\n", info.DocumentCount)
	cmd.Printf("Chunks:     %d\n", info.ChunkCount)
	return nil
}

func runCollectionDeleteDoc(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	collection, documentID := args[0], args[1]
	if err := collectionService.DeleteDocument(cmd.Context(), collection, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	cmd.Printf("Deleted %s from %q\n", documentID, collection)
	return nil
}
