package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"uddannelsebi/internal/dataprocessing"
	"uddannelsebi/internal/exporter"
	"uddannelsebi/internal/forecast"
	"uddannelsebi/internal/geo"
	"uddannelsebi/internal/services"
	"uddannelsebi/internal/validation"
	api "uddannelsebi/pkg/contracts/api/v1"
)

var (
	heading = color.New(color.FgYellow, color.Bold)
	warning = color.New(color.FgYellow)
	success = color.New(color.FgGreen)
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	return table
}

func count(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) }

func optional(v *float64) string {
	if v == nil {
		return "–"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// printWarning shows an empty selection and reports whether err was one
func printWarning(w io.Writer, err error) bool {
	msg, ok := services.Warning(err)
	if ok {
		warning.Fprintln(w, msg)
	}
	return ok
}

func newInstitutionsCmd(e *env) *cobra.Command {
	var institutionType, year string

	cmd := &cobra.Command{
		Use:   "institutions",
		Short: "Fuldførte og afbrudte pr. institutionstype",
		Long: `Without --type the totals of every institution type are listed.
With --type the drill-down of that type is shown, for one year or for
"Alle år".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if institutionType == "" {
				overview, err := e.service.InstitutionOverview(cmd.Context())
				if err != nil {
					return err
				}
				heading.Fprintln(out, "Antal fuldførte og afbrudte pr. institutionstype")
				table := newTable(out, "InstitutionType", "Fuldførte", "Afbrudte", "Frafaldsrate (%)")
				for _, t := range overview.ByCompletions {
					table.Append([]string{t.InstitutionType, count(t.Completions), count(t.Dropouts),
						optional(dataprocessing.RatePtr(t.Dropouts, t.Completions))})
				}
				table.Render()
				return nil
			}

			y, all, err := api.ParseYear(year)
			if err != nil {
				return err
			}
			var yearPtr *int
			if !all {
				yearPtr = &y
			}
			view, err := e.service.InstitutionDrilldown(cmd.Context(), institutionType, yearPtr)
			if printWarning(out, err) {
				return nil
			}
			if err != nil {
				return err
			}

			heading.Fprintf(out, "Statistik for: %s (%s)\n", view.Type, view.YearLabel())
			table := newTable(out, "Fuldførte", "Afbrudte", "Frafaldsrate (%)", "Rækker")
			s := view.Summary
			table.Append([]string{count(s.Completions), count(s.Dropouts), optional(s.DropoutRate), strconv.Itoa(s.Rows)})
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&institutionType, "type", "t", "", "institution type to drill into")
	cmd.Flags().StringVarP(&year, "year", "y", api.AllYears, "year of the drill-down, or \""+api.AllYears+"\"")
	return cmd
}

func newMapCmd(e *env) *cobra.Command {
	var known bool

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Institutioner med koordinater, afbrudte og fuldførte",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if known {
				heading.Fprintln(out, "Institutioner med koordinater")
				for _, name := range geo.Known() {
					fmt.Fprintf(out, "  %s\n", name)
				}
				return nil
			}
			points, err := e.service.InstitutionMap(cmd.Context())
			if printWarning(out, err) {
				return nil
			}
			if err != nil {
				return err
			}

			heading.Fprintln(out, "Frafald og fuldførelse pr. institution")
			table := newTable(out, "Institution", "Afbrudte", "Fuldførte", "Lat", "Lon")
			for _, p := range points {
				table.Append([]string{p.Subinstitution, count(p.Dropouts), count(p.Completions),
					strconv.FormatFloat(p.Lat, 'f', 4, 64), strconv.FormatFloat(p.Lon, 'f', 4, 64)})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&known, "known", false, "list the institutions the map can place")
	return cmd
}

func newLinesCmd(e *env) *cobra.Command {
	var line, direction string

	cmd := &cobra.Command{
		Use:   "lines",
		Short: "FagLinjer, deres FagRetninger og frafaldsrater",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if line == "" {
				lines, err := e.service.SubjectLines(cmd.Context())
				if err != nil {
					return err
				}
				heading.Fprintln(out, "FagLinjer")
				for _, l := range lines {
					fmt.Fprintln(out, l)
				}
				return nil
			}

			view, err := e.service.Subjects(cmd.Context(), line, direction)
			if view == nil || view.Totals == nil {
				if printWarning(out, err) {
					return nil
				}
				return err
			}

			heading.Fprintf(out, "Frafaldsrate for FagRetninger under %s\n", view.Line)
			table := newTable(out, "FagRetning", "Fuldført", "Afbrudt", "Frafaldsrate (%)")
			for _, d := range view.Directions {
				table.Append([]string{d.SubjectDirection, count(d.TotalCompleted), count(d.TotalDropped), optional(d.DropoutRate)})
			}
			table.Render()

			if direction == "" {
				return nil
			}
			if view.Series == nil {
				printWarning(out, err)
				return nil
			}
			heading.Fprintf(out, "Tidsserie for %s under %s\n", view.Series.SubjectDirection, view.Series.SubjectLine)
			series := newTable(out, "År", "Fuldført", "Afbrudt", "Frafaldsrate (%)")
			for i, y := range view.Series.Years {
				series.Append([]string{strconv.Itoa(y), count(view.Series.Completed[i]), count(view.Series.Dropped[i]), optional(view.Series.Rates[i])})
			}
			series.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&line, "line", "l", "", "FagLinje to show")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "FagRetning under the line to show year by year")
	return cmd
}

func newPredictCmd(e *env) *cobra.Command {
	var (
		top       string
		limit     int
		direction string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forudsigelse af afbrudte og fuldførte i 2025",
		Long: `Fit the two regressions on 2015-2023 and predict 2025.

--top ranks the rows by afbrudt, fuldfort or frafaldsprocent.
--direction shows the history and 2025 prediction of one FagRetning.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if direction != "" {
				history, err := e.service.PredictionDirection(cmd.Context(), direction)
				if printWarning(out, err) {
					return nil
				}
				if err != nil {
					return err
				}
				for _, h := range []forecast.History{history.Dropout, history.Completed} {
					heading.Fprintf(out, "%s: %s\n", h.Outcome, history.SubjectDirection)
					table := newTable(out, "År", "Antal")
					for i, y := range h.Years {
						table.Append([]string{strconv.Itoa(y), count(h.Values[i])})
					}
					table.Append([]string{strconv.Itoa(h.Year) + " (forudsagt)", strconv.FormatFloat(h.Predicted, 'f', 2, 64)})
					table.Render()
				}
				return nil
			}

			var rows []forecast.Prediction
			if top != "" {
				ranked, err := e.service.PredictionTop(cmd.Context(), top, limit)
				if err != nil {
					return err
				}
				heading.Fprintln(out, forecast.Measure(top).Title())
				rows = ranked
			} else {
				result, err := e.service.Prediction(cmd.Context())
				if err != nil {
					return err
				}
				heading.Fprintln(out, "Modelkvalitet")
				quality := newTable(out, "Model", "R²", "MAE", "Rækker")
				for _, m := range []*forecast.Model{result.Dropout, result.Completed} {
					quality.Append([]string{string(m.Outcome), optional(m.Quality.R2),
						strconv.FormatFloat(m.Quality.MAE, 'f', 2, 64), strconv.Itoa(len(m.Rows))})
				}
				quality.Render()
				heading.Fprintln(out, "Tabel med forudsagte værdier for 2025")
				rows = result.Rows
			}

			table := newTable(out, exporter.PredictionHeaders()...)
			table.AppendBulk(exporter.PredictionRecords(rows))
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&top, "top", "", "rank by afbrudt, fuldfort or frafaldsprocent")
	cmd.Flags().IntVarP(&limit, "limit", "n", forecast.DefaultTop, "rows in a ranking")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "FagRetning whose history to show")
	return cmd
}

func newExportCmd(e *env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Gem forudsigelsen for 2025 som csv eller xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.NewFileValidator(nil).ValidateExportPath(output); err != nil {
				return err
			}
			result, err := e.service.Prediction(cmd.Context())
			if err != nil {
				return err
			}
			if err := exporter.WritePredictionFile(output, result.Rows); err != nil {
				return err
			}
			success.Fprintf(cmd.OutOrStdout(), "%d rækker gemt i %s\n", len(result.Rows), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "forudsigelse_2025.csv", "output file; the extension picks csv or xlsx")
	return cmd
}
