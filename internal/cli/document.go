package cli

import (
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quillsign/quillsign/internal/api"
	"github.com/quillsign/quillsign/internal/sign"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage documents",
	Long:  `Create, list, inspect, duplicate and export documents`,
}

var documentCreateCmd = &cobra.Command{
	Use:   "create <title> [file]",
	Short: "Create a draft document",
	Long:  `Create a new draft document, optionally uploading a source file`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.CreateDocumentRequest{Title: args[0]}

		if len(args) == 2 {
			content, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}
			req.Content = content
			req.FileName = filepath.Base(args[1])
			req.ContentType = mime.TypeByExtension(filepath.Ext(args[1]))
		}

		var doc sign.Document
		if err := client.do(cmd.Context(), "POST", "/v1/documents", req, &doc); err != nil {
			return err
		}

		appLogger.Info("document created",
			slog.String("document_id", doc.ID),
			slog.String("title", doc.Title),
		)
		return printJSON(doc)
	},
}

var (
	listFolder string
	listTag    string
	listStatus string
	listQuery  string
)

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Long:  `List documents, optionally filtered by folder, tag, status or a search query`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if listFolder != "" {
			params.Set("folder", listFolder)
		}
		if listTag != "" {
			params.Set("tag", listTag)
		}
		if listStatus != "" {
			params.Set("status", listStatus)
		}
		if listQuery != "" {
			params.Set("q", listQuery)
		}

		path := "/v1/documents"
		if len(params) > 0 {
			path += "?" + params.Encode()
		}

		var docs []sign.Document
		if err := client.do(cmd.Context(), "GET", path, nil, &docs); err != nil {
			return err
		}

		for _, d := range docs {
			fmt.Printf("%s  %-12s  %s\n", d.ID, d.Status, d.Title)
		}
		return nil
	},
}

var documentShowCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc sign.Document
		if err := client.do(cmd.Context(), "GET", "/v1/documents/"+args[0], nil, &doc); err != nil {
			return err
		}
		return printJSON(doc)
	},
}

var documentDuplicateCmd = &cobra.Command{
	Use:   "duplicate <document-id>",
	Short: "Duplicate a document",
	Long:  `Create a draft copy of a document with fresh ids and signer statuses reset`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc sign.Document
		if err := client.do(cmd.Context(), "POST", "/v1/documents/"+args[0]+"/duplicate", nil, &doc); err != nil {
			return err
		}
		return printJSON(doc)
	},
}

var exportOutput string

var documentExportCmd = &cobra.Command{
	Use:   "export <document-id>",
	Short: "Export a document",
	Long:  `Export a document as canonical JSON with a checksum, suitable for re-import`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var export sign.Export
		if err := client.do(cmd.Context(), "GET", "/v1/documents/"+args[0]+"/export", nil, &export); err != nil {
			return err
		}

		if exportOutput == "" {
			return printJSON(export)
		}

		raw, err := jsonIndent(export)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOutput, raw, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		appLogger.Info("export written",
			slog.String("document_id", args[0]),
			slog.String("path", exportOutput),
		)
		return nil
	},
}

var documentImportCmd = &cobra.Command{
	Use:   "import <export-file>",
	Short: "Import a previously exported document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		var export sign.Export
		if err := unmarshalJSON(raw, &export); err != nil {
			return fmt.Errorf("%s is not a valid export file: %w", args[0], err)
		}

		var doc sign.Document
		if err := client.do(cmd.Context(), "POST", "/v1/documents/import", export, &doc); err != nil {
			return err
		}
		return printJSON(doc)
	},
}

func init() {
	documentListCmd.Flags().StringVar(&listFolder, "folder", "", "filter by folder")
	documentListCmd.Flags().StringVar(&listTag, "tag", "", "filter by tag")
	documentListCmd.Flags().StringVar(&listStatus, "status", "", "filter by document status")
	documentListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "search titles, signers and tags")
	documentExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write the export to a file instead of stdout")

	documentCmd.AddCommand(documentCreateCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentDuplicateCmd)
	documentCmd.AddCommand(documentExportCmd)
	documentCmd.AddCommand(documentImportCmd)
}
