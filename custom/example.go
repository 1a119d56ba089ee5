// Package custom is the hook for site-specific extensions. Commands, cron jobs
// and routes registered here are applied by the server and CLI at startup.
package custom

import (
	"fmt"
	"text/tabwriter"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"tiresync/api"
	"tiresync/cmd"
	"tiresync/config"
	supplierRepo "tiresync/model/repository/supplier"
)

var listTenant string

func init() {
	listCmd := &cobra.Command{
		Use:   "suppliers:list",
		Short: "List the supplier sources of a tenant with their sync state",
		RunE: func(c *cobra.Command, args []string) error {
			db, err := config.NewDB()
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			list, err := supplierRepo.NewSupplierRepository(db).ListByTenant(c.Context(), listTenant)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tTYPE\tACTIVE\tSTATUS\tLAST SYNC")
			for _, s := range list {
				last := "-"
				if s.LastSyncAt != nil {
					last = s.LastSyncAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\t%s\n", s.ID, s.Code, s.ConnectionType, s.IsActive, s.SyncStatus, last)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&listTenant, "tenant", "", "Tenant ID")
	_ = listCmd.MarkFlagRequired("tenant")
	cmd.Register(listCmd)

	api.RegisterGET("/version", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"app": config.App().AppName, "env": config.App().Env})
	})
}
