package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tiresync/config"
	supplierEntity "tiresync/model/entity/supplier"
	supplierRepo "tiresync/model/repository/supplier"
	supplierService "tiresync/service/supplier"
)

var (
	syncTenant string
	syncSource string
	syncAll    bool
	syncForce  bool
	syncJSON   bool

	registerFile string
)

var suppliersSyncCmd = &cobra.Command{
	Use:   "suppliers:sync",
	Short: "Sync supplier feeds into the workshop inventory",
	Long: `Sync one source (--tenant and --source) or every active feed source (--all).
Sources are processed sequentially; a failing source does not stop the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !syncAll && (syncTenant == "" || syncSource == "") {
			return errors.New("either --all or both --tenant and --source are required")
		}
		if _, err := config.InitLogger(); err != nil {
			return err
		}
		defer func() { _ = config.Log().Sync() }()
		config.InitRedis()
		config.Log().Info(config.PingRedis())

		db, err := config.NewDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc := supplierService.FromConfig(db)
		out := cmd.OutOrStdout()
		start := time.Now()

		if syncAll {
			sum, err := svc.SyncAll(ctx)
			if err != nil {
				return err
			}
			if syncJSON {
				return writeJSON(out, sum)
			}
			printSummary(out, sum, time.Since(start))
			if sum.Failed > 0 {
				return fmt.Errorf("%d of %d sources failed", sum.Failed, sum.Total)
			}
			return nil
		}

		res := svc.SyncSource(ctx, syncTenant, syncSource, supplierService.SyncOptions{Force: syncForce})
		if syncJSON {
			if err := writeJSON(out, res); err != nil {
				return err
			}
		} else {
			printResult(out, res)
		}
		if !res.Success {
			return errors.New(res.Error)
		}
		return nil
	},
}

var suppliersRegisterCmd = &cobra.Command{
	Use:   "suppliers:register",
	Short: "Create or update supplier sources from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(registerFile)
		if err != nil {
			return fmt.Errorf("open sources file: %w", err)
		}
		defer f.Close()

		sources, err := decodeSources(f)
		if err != nil {
			return err
		}
		db, err := config.NewDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		repo := supplierRepo.NewSupplierRepository(db)
		for i := range sources {
			if err := repo.Upsert(cmd.Context(), &sources[i]); err != nil {
				return fmt.Errorf("register %s: %w", sources[i].Code, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s) for tenant %s\n", sources[i].Code, sources[i].ID, sources[i].TenantID)
		}
		return nil
	},
}

// sourcesFile is the YAML layout accepted by suppliers:register.
type sourcesFile struct {
	Suppliers []supplierEntity.Supplier `yaml:"suppliers"`
}

func decodeSources(r io.Reader) ([]supplierEntity.Supplier, error) {
	var doc sourcesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	for i, s := range doc.Suppliers {
		switch {
		case s.TenantID == "":
			return nil, fmt.Errorf("supplier #%d: tenant_id is required", i+1)
		case s.Code == "":
			return nil, fmt.Errorf("supplier #%d: supplier_code is required", i+1)
		case s.ConnectionType == "":
			doc.Suppliers[i].ConnectionType = supplierEntity.ConnectionFeed
		case s.ConnectionType != supplierEntity.ConnectionFeed && s.ConnectionType != supplierEntity.ConnectionAPI:
			return nil, fmt.Errorf("supplier %s: unknown connection_type %q", s.Code, s.ConnectionType)
		}
		if doc.Suppliers[i].Name == "" {
			doc.Suppliers[i].Name = s.Code
		}
	}
	return doc.Suppliers, nil
}

func printResult(w io.Writer, r supplierService.Result) {
	if !r.Success {
		fmt.Fprintf(w, "[FAIL] %s/%s %s: %s\n", r.TenantID, r.SourceID, r.Supplier, r.Error)
		return
	}
	fmt.Fprintf(w, "[ OK ] %s/%s %s: created=%d updated=%d deleted=%d total=%d\n",
		r.TenantID, r.SourceID, r.Supplier, r.Imported, r.Updated, r.Deleted, r.Total)
}

func printSummary(w io.Writer, sum *supplierService.Summary, took time.Duration) {
	for _, r := range sum.Results {
		printResult(w, r)
	}
	fmt.Fprintf(w, `
=== Supplier Sync Report ===
Sources:    %d
Succeeded:  %d
Failed:     %d
Total time: %s
============================
`, sum.Total, sum.Succeeded, sum.Failed, took.Round(time.Millisecond))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	suppliersSyncCmd.Flags().StringVar(&syncTenant, "tenant", "", "Tenant owning the source")
	suppliersSyncCmd.Flags().StringVar(&syncSource, "source", "", "Supplier source ID")
	suppliersSyncCmd.Flags().BoolVar(&syncAll, "all", false, "Sync every active feed source")
	suppliersSyncCmd.Flags().BoolVar(&syncForce, "force", false, "Re-enter a source stuck in syncing")
	suppliersSyncCmd.Flags().BoolVar(&syncJSON, "json", false, "Print the result as JSON")
	suppliersSyncCmd.MarkFlagsMutuallyExclusive("all", "source")
	rootCmd.AddCommand(suppliersSyncCmd)

	suppliersRegisterCmd.Flags().StringVarP(&registerFile, "file", "f", "sources.yaml", "YAML file listing supplier sources")
	rootCmd.AddCommand(suppliersRegisterCmd)
}
