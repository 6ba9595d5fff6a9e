package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillsign/quillsign/internal/api"
	"github.com/quillsign/quillsign/internal/sign"
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Place and remove fields on a document",
}

var (
	fieldPage     int
	fieldX        float64
	fieldY        float64
	fieldWidth    float64
	fieldHeight   float64
	fieldSignerID string
	fieldRequired bool
	fieldLabel    string
	fieldOptions  []string
)

var fieldAddCmd = &cobra.Command{
	Use:   "add <document-id> <kind>",
	Short: "Place a field on a document page",
	Long: `Place a field on a document page. Kind is one of text, signature, date,
checkbox, dropdown or radio; geometry is given in percent of the page`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := sign.FieldKind(args[1])
		if !sign.IsValidFieldKind(kind) {
			return fmt.Errorf("unknown field kind %q", args[1])
		}

		req := api.AddFieldRequest{
			Kind: kind,
			Geometry: sign.Geometry{
				Page:   fieldPage,
				X:      fieldX,
				Y:      fieldY,
				Width:  fieldWidth,
				Height: fieldHeight,
			},
			SignerID: fieldSignerID,
			Required: fieldRequired,
			Label:    fieldLabel,
			Options:  fieldOptions,
		}

		var field sign.Field
		if err := client.do(cmd.Context(), "POST", "/v1/documents/"+args[0]+"/fields", req, &field); err != nil {
			return err
		}
		return printJSON(field)
	},
}

var fieldRemoveCmd = &cobra.Command{
	Use:   "remove <document-id> <field-id>",
	Short: "Remove a field from a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.do(cmd.Context(), "DELETE", "/v1/documents/"+args[0]+"/fields/"+args[1], nil, nil)
	},
}

func init() {
	fieldAddCmd.Flags().IntVar(&fieldPage, "page", 1, "1-based page number")
	fieldAddCmd.Flags().Float64Var(&fieldX, "x", 0, "left edge, percent of page width")
	fieldAddCmd.Flags().Float64Var(&fieldY, "y", 0, "top edge, percent of page height")
	fieldAddCmd.Flags().Float64Var(&fieldWidth, "width", 20, "width, percent of page width")
	fieldAddCmd.Flags().Float64Var(&fieldHeight, "height", 5, "height, percent of page height")
	fieldAddCmd.Flags().StringVar(&fieldSignerID, "signer", "", "assign the field to a signer")
	fieldAddCmd.Flags().BoolVar(&fieldRequired, "required", false, "field must be filled before completion")
	fieldAddCmd.Flags().StringVar(&fieldLabel, "label", "", "display label")
	fieldAddCmd.Flags().StringSliceVar(&fieldOptions, "option", nil, "dropdown/radio option (repeatable)")

	fieldCmd.AddCommand(fieldAddCmd)
	fieldCmd.AddCommand(fieldRemoveCmd)
}
