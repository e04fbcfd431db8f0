// Package main provides slfctl, the operator CLI for schema migrations and
// checklist catalog checks.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"slfcert/internal/checklist/catalog"
	"slfcert/internal/checklist/geotag"
	"slfcert/internal/checklist/models"
	"slfcert/internal/checklist/resolver"
	"slfcert/internal/platform/config"
	"slfcert/internal/platform/postgres"
	id "slfcert/pkg/domain"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "slfctl",
		Short:         "Operate the SLF compliance service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.AddCommand(newMigrateCmd(), newChecklistCmd())
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), databaseURL, func(ctx context.Context, db *sql.DB) error {
				if err := postgres.Migrate(ctx, db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), databaseURL, func(ctx context.Context, db *sql.DB) error {
				return postgres.MigrationStatus(ctx, db)
			})
		},
	})
	return cmd
}

func newChecklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Inspect checklist catalogs",
	}
	cmd.AddCommand(newChecklistValidateCmd(), newChecklistResolveCmd(), newChecklistNoSignalCmd())
	return cmd
}

func newChecklistValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a catalog file, or the embedded default when no path is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cat, err := openCatalog(path)
			if err != nil {
				return err
			}
			templates := cat.Templates()
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d templates, %d items, last updated %s\n",
				len(templates), len(resolver.Flatten(templates)), cat.Metadata().LastUpdated)
			return nil
		},
	}
}

func newChecklistResolveCmd() *cobra.Command {
	var (
		path           string
		specialization string
		buildingType   string
		itemsOnly      bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the templates or items an inspector sees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := openCatalog(path)
			if err != nil {
				return err
			}
			bt, ok := models.ParseBuildingType(buildingType)
			if !ok {
				return fmt.Errorf("unknown building type %q", buildingType)
			}
			spec := id.NormalizeSpecialization(specialization)
			r := resolver.New(cat)

			var payload any
			if itemsOnly {
				payload = r.ItemsForInspector(spec, bt)
			} else {
				payload = r.BySpecialization(spec, bt)
			}
			return writeJSON(cmd.OutOrStdout(), payload)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Catalog file (defaults to the embedded catalog)")
	cmd.Flags().StringVar(&specialization, "specialization", "", "Inspector specialization")
	cmd.Flags().StringVar(&buildingType, "building-type", "", "Building type filter")
	cmd.Flags().BoolVar(&itemsOnly, "items", false, "Print the flattened inspector item list")
	return cmd
}

// newChecklistNoSignalCmd runs the geotag fallback against a locator that
// never answers, showing what inspectors get when the fix times out.
func newChecklistNoSignalCmd() *cobra.Command {
	var (
		path    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "no-signal",
		Short: "Show the manual-location fallback applied after a geotag timeout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := openCatalog(path)
			if err != nil {
				return err
			}
			if timeout <= 0 {
				cfg, err := config.FromEnv()
				if err != nil {
					return err
				}
				timeout = cfg.GeotagTimeout
			}
			never := geotag.LocatorFunc(func(ctx context.Context) (geotag.Fix, error) {
				<-ctx.Done()
				return geotag.Fix{}, ctx.Err()
			})
			fix, err := geotag.Acquire(cmd.Context(), never, timeout, resolver.New(cat).NoSignalPolicy())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), fix)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Catalog file (defaults to the embedded catalog)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Fix budget (defaults to GEOTAG_TIMEOUT)")
	return cmd
}

// withDatabase opens a single-connection pool for the duration of fn.
func withDatabase(ctx context.Context, databaseURL string, fn func(ctx context.Context, db *sql.DB) error) error {
	if databaseURL == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		databaseURL = cfg.DatabaseURL
	}
	db, err := postgres.Connect(ctx, databaseURL, postgres.DefaultMigrateOptions())
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

func openCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
