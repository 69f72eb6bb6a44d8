package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/hupe1980/kanjisim/model"
)

// parseQuery accepts a single-character literal or a hexadecimal codepoint
// (4E00, U+4E00, 0x4e00).
func parseQuery(s string) (model.ID, error) {
	if utf8.RuneCountInString(s) == 1 {
		return model.IDFromLiteral(s)
	}
	return model.ParseID(s)
}

func newSimilarCmd(f *flags) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "similar <literal|codepoint>",
		Short: "List the kanji most similar to a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseQuery(args[0])
			if err != nil {
				return err
			}
			eng, done, err := openEngine(cmd, f)
			if err != nil {
				return err
			}
			defer done()

			query, err := eng.Lookup(id)
			if err != nil {
				return err
			}
			matches, err := eng.Similar(cmd.Context(), id, k)
			if err != nil {
				return err
			}
			r, _ := newRenderer(f.output)
			return r.matches(cmd.OutOrStdout(), query, matches)
		},
	}
	cmd.Flags().IntVar(&k, "k", 0, "number of neighbors (0 uses the configured default)")
	return cmd
}

func newLookupCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <literal|codepoint>",
		Short: "Show a kanji record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseQuery(args[0])
			if err != nil {
				return err
			}
			eng, done, err := openEngine(cmd, f)
			if err != nil {
				return err
			}
			defer done()

			rec, err := eng.Lookup(id)
			if err != nil {
				return err
			}
			root, err := eng.VariantRoot(id)
			if err != nil {
				return err
			}
			r, _ := newRenderer(f.output)
			return r.record(cmd.OutOrStdout(), rec, root)
		},
	}
}

func newReportCmd(f *flags) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dataset validation report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, done, err := openEngine(cmd, f)
			if err != nil {
				return err
			}
			defer done()

			rep := eng.ValidationReport()
			r, _ := newRenderer(f.output)
			if err := r.report(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			if strict && !rep.Clean() {
				return fmt.Errorf("dataset has %d flagged records, %d dropped, %d structural errors",
					len(rep.Records), len(rep.Dropped), len(rep.StructuralErrors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero unless the dataset is clean")
	return cmd
}
