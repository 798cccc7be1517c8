package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kds-visual/internal/audit"
	"github.com/ziadkadry99/kds-visual/internal/progress"
	"github.com/ziadkadry99/kds-visual/internal/species"
)

var speciesCmd = &cobra.Command{
	Use:   "species",
	Short: "Inspect and seed the species database",
}

var speciesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List species, optionally filtered by family or name prefix",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		family, _ := cmd.Flags().GetString("family")
		query, _ := cmd.Flags().GetString("query")

		var list []species.Species
		switch {
		case query != "":
			list, err = store.Search(cmd.Context(), query, 0)
		case family != "":
			list, err = store.ByFamily(cmd.Context(), family)
		default:
			list, err = store.List(cmd.Context())
		}
		if err != nil {
			return err
		}
		if len(list) == 0 {
			warnf("no species found; run `kdsvisual species seed` to load the bundled dataset")
			return nil
		}

		tbl := table.NewWriter()
		tbl.SetOutputMirror(os.Stdout)
		tbl.SetStyle(table.StyleLight)
		tbl.AppendHeader(table.Row{"ID", "Scientific name", "Common name", "Family"})
		for _, sp := range list {
			tbl.AppendRow(table.Row{sp.ID, sp.ScientificName, sp.CommonName, sp.Family})
		}
		tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d species", len(list))})
		tbl.Render()
		return nil
	},
}

var speciesShowCmd = &cobra.Command{
	Use:   "show <scientific name>",
	Short: "Show one species with its observation sites and DNA records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		name := strings.Join(args, " ")
		d, err := store.GetByName(cmd.Context(), name)
		if errors.Is(err, species.ErrNotFound) {
			return fmt.Errorf("no species named %q", name)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s", d.ScientificName)
		if d.CommonName != "" {
			fmt.Printf(" (%s)", d.CommonName)
		}
		fmt.Println()
		if d.Family != "" {
			fmt.Printf("Family: %s\n", d.Family)
		}
		if d.Description != "" {
			fmt.Printf("\n%s\n", d.Description)
		}

		if len(d.Locations) > 0 {
			tbl := table.NewWriter()
			tbl.SetOutputMirror(os.Stdout)
			tbl.SetStyle(table.StyleLight)
			tbl.SetTitle("Observed at")
			tbl.AppendHeader(table.Row{"Location", "Latitude", "Longitude", "Date"})
			for _, l := range d.Locations {
				date := ""
				if l.ObservationDate != nil {
					date = l.ObservationDate.Format("2006-01-02")
				}
				tbl.AppendRow(table.Row{l.Name, fmt.Sprintf("%.4f", l.Latitude), fmt.Sprintf("%.4f", l.Longitude), date})
			}
			fmt.Println()
			tbl.Render()
		}

		if len(d.Sequences) > 0 {
			tbl := table.NewWriter()
			tbl.SetOutputMirror(os.Stdout)
			tbl.SetStyle(table.StyleLight)
			tbl.SetTitle("DNA sequences")
			tbl.AppendHeader(table.Row{"Accession", "Gene", "Length (bp)", "Source"})
			for _, q := range d.Sequences {
				tbl.AppendRow(table.Row{q.GenBankAccession, q.Gene, q.LengthBP, q.Source})
			}
			fmt.Println()
			tbl.Render()
		}
		return nil
	},
}

var speciesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled species, locations and DNA records",
	Long:  `Loads the bundled Indonesian biodiversity dataset into the species database. Rows are matched on their natural keys, so seeding again adds nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		reporter := progress.NewReporter(os.Stderr, "Seeding")
		reporter.Start(species.SeedSize())
		done := 0
		res, err := store.Seed(cmd.Context(), func(kind, name string) {
			done++
			reporter.Update(done, kind+" "+name)
		})
		reporter.Finish()
		if err != nil {
			return fmt.Errorf("seeding %s: %w", database.Path(), err)
		}

		if err := audit.NewStore(database).Log(cmd.Context(), audit.Entry{
			ActorType: audit.ActorSystem,
			ActorID:   "kdsvisual species seed",
			Action:    audit.ActionDatasetSeeded,
			Summary:   fmt.Sprintf("%d species, %d locations, %d sequences, %d links", res.Species, res.Locations, res.Sequences, res.Links),
		}); err != nil {
			warnf("recording seed run: %v", err)
		}

		successf("Seeded %s: %d species, %d locations, %d sequences, %d links",
			database.Path(), res.Species, res.Locations, res.Sequences, res.Links)
		return nil
	},
}

func init() {
	speciesListCmd.Flags().String("family", "", "only species of this family")
	speciesListCmd.Flags().StringP("query", "q", "", "scientific or common name prefix")
	speciesCmd.AddCommand(speciesListCmd, speciesShowCmd, speciesSeedCmd)
	rootCmd.AddCommand(speciesCmd)
}
