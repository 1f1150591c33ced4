package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sangkips/devis-eau-api/internal/application/service"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/dto/request"
	"github.com/spf13/cobra"
)

var quoteFile string

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Work with quotes",
}

var quotePreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Price a quote against the catalog without storing it",
	Long: `Price a quote read from a JSON file with the same shape as the
POST /api/v1/quotes/preview body:

  {"dossier_type": "CITERNAGE", "date": "2024-03-15",
   "lines": [{"tank_count": 2, "volume_per_tank": 50, "include_transport": true}],
   "transport_price": 300}`,
	Example: "  devisctl quote preview --file lines.json",
	RunE:    runQuotePreview,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.AddCommand(quotePreviewCmd)

	quotePreviewCmd.Flags().StringVarP(&quoteFile, "file", "f", "", "JSON file with the quote, - for stdin")
	_ = quotePreviewCmd.MarkFlagRequired("file")
}

func runQuotePreview(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if quoteFile != "-" {
		f, err := os.Open(quoteFile)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	input, err := readPriceInput(r)
	if err != nil {
		return err
	}

	priced, err := container.QuoteService.PreviewQuote(cmd.Context(), input)
	if err != nil {
		return err
	}
	printPricedQuote(cmd.OutOrStdout(), priced)
	return nil
}

func readPriceInput(r io.Reader) (*service.PriceQuoteInput, error) {
	var req request.PriceQuoteRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}

	input := &service.PriceQuoteInput{
		DossierType:      req.DossierType,
		TransportPrice:   req.TransportPrice,
		TransportTaxRate: req.TransportTaxRate,
	}
	if req.Date != "" {
		date, err := parseDay(req.Date)
		if err != nil {
			return nil, err
		}
		input.Date = &date
	}
	for _, l := range req.Lines {
		input.Lines = append(input.Lines, service.QuoteLineInput{
			TankCount:        l.TankCount,
			VolumePerTank:    l.VolumePerTank,
			IncludeTransport: l.IncludeTransport,
		})
	}
	return input, nil
}

func printPricedQuote(out io.Writer, q *service.PricedQuote) {
	t := q.Totals
	fmt.Fprintf(out, "%s on %s, water tariff #%d at %s HT, TVA %s\n\n",
		q.DossierType, q.Date.Format("2006-01-02"), q.Water.TariffID,
		t.EauUnitPrice.StringFixed(2), t.EauTaxRate.String())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "TANKS\tM3/TANK\tVOLUME\tWATER HT\tTRANSPORT/TANK\tSOURCE\tTRANSPORT HT\t")
	for _, l := range t.Lines {
		source := "-"
		if l.Line.IncludeTransport {
			source = string(l.TransportSource)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			l.Line.TankCount, l.Line.VolumePerTank.String(), l.LineVolume.String(), l.WaterHT.StringFixed(3),
			l.TransportUnitPrice.StringFixed(2), source, l.TransportHT.StringFixed(3))
	}
	w.Flush()

	fmt.Fprintf(out, "\nwater      HT %s  TVA %s  TTC %s\n", t.TotalEauHT.StringFixed(3), t.TotalEauTVA.StringFixed(3), t.TotalEauTTC.StringFixed(3))
	fmt.Fprintf(out, "transport  HT %s  TVA %s  TTC %s\n", t.TotalTransportHT.StringFixed(3), t.TotalTransportTVA.StringFixed(3), t.TotalTransportTTC.StringFixed(3))
	fmt.Fprintf(out, "total      HT %s  TVA %s  TTC %s\n", t.TotalHT.StringFixed(3), t.TotalTVA.StringFixed(3), t.TotalTTC.StringFixed(3))
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return t, nil
}
