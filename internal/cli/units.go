package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ralt/yumupload/internal/catalog"
	"github.com/ralt/yumupload/internal/models"
)

// unitOutput is the JSON form of a catalog unit
type unitOutput struct {
	TypeID      string          `json:"type_id"`
	ID          string          `json:"id"`
	Key         models.UnitKey  `json:"unit_key"`
	Metadata    models.Metadata `json:"metadata,omitempty"`
	StoragePath string          `json:"storage_path,omitempty"`
}

func newUnitOutput(u *models.Unit) unitOutput {
	return unitOutput{
		TypeID:      u.TypeID.String(),
		ID:          u.ID,
		Key:         u.Key,
		Metadata:    u.Metadata,
		StoragePath: u.StoragePath,
	}
}

func newUnitsCmd(a *app) *cobra.Command {
	var (
		typeIDs []string
		filter  map[string]string
		fields  []string
	)

	cmd := &cobra.Command{
		Use:   "units",
		Short: "List catalog units",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := catalog.Criteria{Fields: fields}
			for _, t := range typeIDs {
				typeID, err := models.ParseTypeID(t)
				if err != nil {
					return err
				}
				criteria.TypeIDs = append(criteria.TypeIDs, typeID)
			}
			if len(filter) > 0 {
				criteria.Filters = []map[string]string{filter}
			}

			cat, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			units, err := cat.QueryUnits(cmd.Context(), criteria)
			if err != nil {
				return fmt.Errorf("failed to query units: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, u := range units {
				if err := enc.Encode(newUnitOutput(u)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&typeIDs, "type", "t", nil, "Unit types to list (default all)")
	cmd.Flags().StringToStringVar(&filter, "filter", nil, "Field equality filter, e.g. name=walrus,arch=noarch")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Metadata fields to print (default all)")

	return cmd
}
