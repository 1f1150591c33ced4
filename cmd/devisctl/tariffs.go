package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sangkips/devis-eau-api/internal/application/service"
	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/pkg/pagination"
	"github.com/spf13/cobra"
)

var (
	tariffsType       string
	tariffsActiveOnly bool
)

var tariffsCmd = &cobra.Command{
	Use:   "tariffs",
	Short: "Inspect the tariff catalog",
}

var tariffsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Print the tariff catalog, newest first",
	Example: "  devisctl tariffs list --type TRANSPORT",
	RunE:    runTariffsList,
}

var tariffsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report active tariffs sharing a service type (or transport reference volume)",
	RunE:  runTariffsCheck,
}

func init() {
	rootCmd.AddCommand(tariffsCmd)
	tariffsCmd.AddCommand(tariffsListCmd, tariffsCheckCmd)

	tariffsListCmd.Flags().StringVar(&tariffsType, "type", "", "Service type: CITERNAGE, TRANSPORT, VOL or ESSAI")
	tariffsListCmd.Flags().BoolVar(&tariffsActiveOnly, "active", false, "Only tariffs active now")
}

func runTariffsList(cmd *cobra.Command, args []string) error {
	params := &pagination.PaginationParams{Page: 1, PerPage: 100}
	var tariffs []entity.Tariff
	for {
		result, err := container.TariffService.ListTariffs(cmd.Context(), &service.ListTariffsInput{
			Pagination:  params,
			ServiceType: tariffsType,
			ActiveOnly:  tariffsActiveOnly,
		})
		if err != nil {
			return err
		}
		tariffs = append(tariffs, result.Items...)
		if !result.Pagination.HasNext {
			break
		}
		params.Page++
	}

	printTariffs(cmd.OutOrStdout(), tariffs, time.Now())
	return nil
}

func printTariffs(out io.Writer, tariffs []entity.Tariff, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tPRICE HT\tTVA\tREF VOL\tFROM\tUNTIL\tACTIVE")
	for _, t := range tariffs {
		ref := "-"
		if t.ReferenceVolume != nil {
			ref = fmt.Sprint(*t.ReferenceVolume)
		}
		until := "-"
		if t.ValidUntil != nil {
			until = t.ValidUntil.Format("2006-01-02")
		}
		active := "no"
		if t.IsActiveAt(now) {
			active = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.ServiceType, t.UnitPriceExclTax.StringFixed(2), t.TaxRate.String(),
			ref, t.ValidFrom.Format("2006-01-02"), until, active)
	}
	w.Flush()
}

func runTariffsCheck(cmd *cobra.Command, args []string) error {
	conflicts, err := container.TariffService.CheckCatalog(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(conflicts) == 0 {
		fmt.Fprintln(out, "catalog OK: no conflicting active tariffs")
		return nil
	}
	for _, c := range conflicts {
		fmt.Fprintf(out, "conflict %s\n", c)
	}
	return fmt.Errorf("%d conflicting tariff groups", len(conflicts))
}
