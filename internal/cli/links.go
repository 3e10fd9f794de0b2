package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ralt/yumupload/internal/models"
)

// refOutput is the JSON form of a linked unit
type refOutput struct {
	TypeID string         `json:"type_id"`
	ID     string         `json:"id"`
	Key    models.UnitKey `json:"unit_key"`
}

func newLinksCmd(a *app) *cobra.Command {
	var (
		typeID string
		key    map[string]string
	)

	cmd := &cobra.Command{
		Use:   "links",
		Short: "List the units linked to a unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := models.ParseTypeID(typeID)
			if err != nil {
				return err
			}
			if len(key) == 0 {
				return fmt.Errorf("--key is required")
			}

			cat, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			unit, err := cat.GetUnit(cmd.Context(), t, key)
			if err != nil {
				return fmt.Errorf("failed to load %s unit: %w", t, err)
			}
			refs, err := cat.LinkedUnits(cmd.Context(), unit)
			if err != nil {
				return fmt.Errorf("failed to list links: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range refs {
				if err := enc.Encode(refOutput{TypeID: r.TypeID.String(), ID: r.ID, Key: r.Key}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeID, "type", "t", "", "Type of the unit")
	cmd.Flags().StringToStringVar(&key, "key", nil, "Unit key, e.g. id=RHSA-2012:0001")

	return cmd
}
