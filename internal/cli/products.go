package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cartflow/internal/catalog"
)

// ProductsOptions holds flags for the products command.
type ProductsOptions struct {
	*RootOptions
	Catalog string
}

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "products",
		Short:         "List the product catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.Default()
			if opts.Catalog != "" {
				var err error
				cat, err = catalog.LoadFile(opts.Catalog)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to load catalog", err)
				}
			}

			if opts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cat.Products())
			}
			fmt.Fprint(cmd.OutOrStdout(), cat.Listing())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to YAML product catalog")

	return cmd
}
