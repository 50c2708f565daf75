package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OCAP2/markerset/internal/geo"
	"github.com/OCAP2/markerset/internal/markerset"
	"github.com/OCAP2/markerset/pkg/marker"
)

// errInvalidDocument is returned when a document has entries that were skipped
var errInvalidDocument = errors.New("document contains invalid entries")

// loadFile reads path into a fresh document and returns the load report.
func (a *app) loadFile(stdin io.Reader, path string) (*markerset.Document, markerset.DocumentReport, error) {
	tree, err := readDocument(stdin, path)
	if err != nil {
		return nil, markerset.DocumentReport{}, err
	}
	doc := a.newDocument()
	report := doc.Load(a.resolver(), tree.Root(), true)
	return doc, report, nil
}

func printReport(w io.Writer, path string, report markerset.DocumentReport) bool {
	ok := true
	for _, s := range report.SkippedSets {
		ok = false
		fmt.Fprintf(w, "%s: markerSets[%d] (%s): %v\n", path, s.Index, s.ID, s.Err)
	}

	setIDs := make([]string, 0, len(report.Sets))
	for id := range report.Sets {
		setIDs = append(setIDs, id)
	}
	sort.Strings(setIDs)
	for _, id := range setIDs {
		for _, s := range report.Sets[id].Skipped {
			ok = false
			fmt.Fprintf(w, "%s: %s.markers[%d] (%s): %v\n", path, id, s.Index, s.ID, s.Err)
		}
	}
	return ok
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check marker documents and report every entry that cannot be loaded",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				doc, report, err := a.loadFile(cmd.InOrStdin(), path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
					continue
				}
				if !printReport(cmd.OutOrStdout(), path, report) {
					failed++
					continue
				}
				markers := 0
				for _, s := range doc.Sets() {
					markers += s.Len()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d sets, %d markers)\n", path, len(doc.Sets()), markers)
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", errInvalidDocument, failed, len(args))
			}
			return nil
		},
	}
}

func (a *app) normalizeCmd() *cobra.Command {
	var (
		output string
		asJSON bool
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Rewrite a document in canonical form, dropping entries that cannot be loaded",
		Long: `Loads the document and saves it again: sets and markers are sorted by id,
defaults are written out explicitly and coordinates are rounded to three decimals.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, report, err := a.loadFile(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if !printReport(cmd.ErrOrStderr(), args[0], report) && strict {
				return errInvalidDocument
			}
			return writeDocument(cmd.OutOrStdout(), output, doc.Tree(), asJSON)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write JSON instead of YAML")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of dropping invalid entries")
	return cmd
}

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize the sets of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, report, err := a.loadFile(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			printReport(cmd.ErrOrStderr(), args[0], report)
			return writeSummary(cmd.OutOrStdout(), doc)
		},
	}
}

// setSummary aggregates the markers of one set.
type setSummary struct {
	byType     map[string]int
	lineLength float64
	area       float64
	bounds     geo.Bounds
}

func summarize(s *markerset.Set) setSummary {
	sum := setSummary{byType: make(map[string]int)}
	for _, m := range s.Markers() {
		sum.byType[m.Type()]++
		sum.bounds.AddPosition(m.Position())

		switch mk := m.(type) {
		case *marker.LineMarker:
			line := mk.Line()
			sum.lineLength += geo.LineLength(line)
			sum.bounds.AddLine(line)
		case *marker.ShapeMarker:
			shape, _ := mk.Shape()
			sum.area += geo.ShapeArea(shape)
			sum.bounds.AddShape(shape)
		case *marker.ExtrudeMarker:
			shape, _, _ := mk.Shape()
			sum.area += geo.ShapeArea(shape)
			sum.bounds.AddShape(shape)
		}
	}
	return sum
}

func writeSummary(w io.Writer, doc *markerset.Document) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SET\tMAP\tMARKERS\tTYPES\tLINE LENGTH\tAREA\tBOUNDS")
	for _, s := range doc.Sets() {
		sum := summarize(s)

		types := make([]string, 0, len(sum.byType))
		for t := range sum.byType {
			types = append(types, t)
		}
		sort.Strings(types)
		typeList := ""
		for i, t := range types {
			if i > 0 {
				typeList += ","
			}
			typeList += fmt.Sprintf("%s=%d", t, sum.byType[t])
		}
		if typeList == "" {
			typeList = "-"
		}

		bounds := "-"
		if lo, hi, ok := sum.bounds.MinMax(); ok {
			bounds = fmt.Sprintf("(%g,%g)..(%g,%g)", lo.X, lo.Y, hi.X, hi.Y)
		}

		mapID := s.Map().ID
		if mapID == "" {
			mapID = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%.1f\t%.1f\t%s\n",
			s.ID(), mapID, s.Len(), typeList, sum.lineLength, sum.area, bounds)
	}
	return tw.Flush()
}
