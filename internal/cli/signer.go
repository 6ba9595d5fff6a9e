package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quillsign/quillsign/internal/api"
	"github.com/quillsign/quillsign/internal/sign"
)

var signerCmd = &cobra.Command{
	Use:   "signer",
	Short: "Manage signers on a document",
}

var signerRole string

var signerAddCmd = &cobra.Command{
	Use:   "add <document-id> <name> <email>",
	Short: "Add a signer to a document",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.AddSignerRequest{
			Name:  args[1],
			Email: args[2],
			Role:  signerRole,
		}

		var signer sign.Signer
		if err := client.do(cmd.Context(), "POST", "/v1/documents/"+args[0]+"/signers", req, &signer); err != nil {
			return err
		}

		appLogger.Info("signer added",
			slog.String("document_id", args[0]),
			slog.String("signer_id", signer.ID),
			slog.String("email", signer.Email),
		)
		return printJSON(signer)
	},
}

var signerRemoveCmd = &cobra.Command{
	Use:   "remove <document-id> <signer-id>",
	Short: "Remove a signer from a document",
	Long:  `Remove a signer. Fields assigned exclusively to them are removed as well`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.do(cmd.Context(), "DELETE", "/v1/documents/"+args[0]+"/signers/"+args[1], nil, nil)
	},
}

func init() {
	signerAddCmd.Flags().StringVar(&signerRole, "role", "", "signer role, e.g. Tenant")

	signerCmd.AddCommand(signerAddCmd)
	signerCmd.AddCommand(signerRemoveCmd)
}
