package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillsign/quillsign/internal/api"
	"github.com/quillsign/quillsign/internal/sign"
	"github.com/quillsign/quillsign/internal/workflow"
)

var sendCmd = &cobra.Command{
	Use:   "send <document-id>",
	Short: "Send a draft document for signing",
	Long:  `Send a draft document for signing, activating signers per the signing order`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc sign.Document
		if err := client.do(cmd.Context(), "POST", "/v1/documents/"+args[0]+"/send", nil, &doc); err != nil {
			return err
		}

		appLogger.Info("document sent",
			slog.String("document_id", doc.ID),
			slog.Int("signers", len(doc.Signers)),
		)
		return printJSON(doc)
	},
}

var (
	signSignerID      string
	signText          string
	signSignatureFile string
	signDate          string
	signChecked       bool
	signChoice        string
)

var signCmd = &cobra.Command{
	Use:   "sign <document-id> <field-id>",
	Short: "Fill a field with a value",
	Long: `Fill a field with a value. Exactly one of --text, --signature-file, --date,
--checked or --choice selects the value; it must match the field's kind`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := signValue(cmd)
		if err != nil {
			return err
		}

		req := api.FillFieldRequest{SignerID: signSignerID, Value: value}

		var doc sign.Document
		if err := client.do(cmd.Context(), "POST", "/v1/documents/"+args[0]+"/fields/"+args[1]+"/value", req, &doc); err != nil {
			return err
		}
		return printJSON(doc)
	},
}

// signValue builds the field value from whichever flag was set.
func signValue(cmd *cobra.Command) (*sign.FieldValue, error) {
	switch {
	case cmd.Flags().Changed("text"):
		return sign.TextValue(signText), nil
	case cmd.Flags().Changed("signature-file"):
		blob, err := os.ReadFile(signSignatureFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", signSignatureFile, err)
		}
		return sign.SignatureValue(blob), nil
	case cmd.Flags().Changed("date"):
		t, err := time.Parse("2006-01-02", signDate)
		if err != nil {
			return nil, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
		}
		return sign.DateValue(t), nil
	case cmd.Flags().Changed("checked"):
		return sign.CheckedValue(signChecked), nil
	case cmd.Flags().Changed("choice"):
		return sign.ChoiceValue(signChoice), nil
	default:
		return nil, fmt.Errorf("one of --text, --signature-file, --date, --checked or --choice is required")
	}
}

var completeSignerID string

var completeCmd = &cobra.Command{
	Use:   "complete <document-id>",
	Short: "Record a signer's completion",
	Long:  `Record that a signer has finished signing. All of their required fields must be filled`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc sign.Document
		if err := client.do(cmd.Context(), "POST", "/v1/documents/"+args[0]+"/signers/"+completeSignerID+"/complete", nil, &doc); err != nil {
			return err
		}

		appLogger.Info("signer completed",
			slog.String("document_id", doc.ID),
			slog.String("signer_id", completeSignerID),
			slog.String("document_status", string(doc.Status)),
		)
		return printJSON(doc)
	},
}

var (
	declineSignerID string
	declineReason   string
)

var declineCmd = &cobra.Command{
	Use:   "decline <document-id>",
	Short: "Decline to sign a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.DeclineRequest{Reason: declineReason}

		var doc sign.Document
		if err := client.do(cmd.Context(), "POST", "/v1/documents/"+args[0]+"/signers/"+declineSignerID+"/decline", req, &doc); err != nil {
			return err
		}
		return printJSON(doc)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <document-id>",
	Short: "Show document status and signing progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc sign.Document
		if err := client.do(cmd.Context(), "GET", "/v1/documents/"+args[0], nil, &doc); err != nil {
			return err
		}

		var progress workflow.Progress
		if err := client.do(cmd.Context(), "GET", "/v1/documents/"+args[0]+"/progress", nil, &progress); err != nil {
			return err
		}

		fmt.Printf("%s  %s\n", doc.ID, doc.Title)
		fmt.Printf("status: %s\n", doc.Status)
		fmt.Printf("required fields: %d/%d filled\n", progress.Completed, progress.Required)
		for _, s := range doc.Signers {
			fmt.Printf("  %-10s  %s <%s>\n", s.Status, s.Name, s.Email)
		}
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&signSignerID, "signer", "", "acting signer id (omit for owner preview of unassigned fields)")
	signCmd.Flags().StringVar(&signText, "text", "", "text value")
	signCmd.Flags().StringVar(&signSignatureFile, "signature-file", "", "path to a signature image")
	signCmd.Flags().StringVar(&signDate, "date", "", "date value, YYYY-MM-DD")
	signCmd.Flags().BoolVar(&signChecked, "checked", false, "checkbox value")
	signCmd.Flags().StringVar(&signChoice, "choice", "", "dropdown or radio option")

	completeCmd.Flags().StringVar(&completeSignerID, "signer", "", "signer id")
	_ = completeCmd.MarkFlagRequired("signer")

	declineCmd.Flags().StringVar(&declineSignerID, "signer", "", "signer id")
	declineCmd.Flags().StringVar(&declineReason, "reason", "", "reason for declining")
	_ = declineCmd.MarkFlagRequired("signer")
}
