package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iafilius/ChartEngine/src/align"
	"github.com/iafilius/ChartEngine/src/panel"
	"github.com/iafilius/ChartEngine/src/render"
)

func newInspectCmd() *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "inspect [panel-id...]",
		Short: "Print the built data of panels",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			panels, err := a.panels(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, p := range panels {
				c, err := a.controller(p, nil)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := inspect(out, c, rows); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", 10, "rows printed per table (0 prints all)")
	return cmd
}

func inspect(w io.Writer, c *panel.Controller, rows int) error {
	opts, d := c.Options(), c.Data()
	fmt.Fprintf(w, "== %s (%s) ==\n", opts.ID, d.Kind)
	if d.Empty() {
		fmt.Fprintln(w, "no data")
		return nil
	}
	switch d.Kind {
	case panel.KindHeatmap:
		return inspectHeatmaps(w, c)
	case panel.KindHistogram:
		fmt.Fprintf(w, "samples=%d bucket_size=%s buckets=%d\n", d.Samples, render.FormatTick(d.BucketSize), d.Table.Len())
	}
	if err := printTable(w, "x", d.Names, d.Table, rows); err != nil {
		return err
	}
	if s, ok := c.Stacked(); ok {
		fmt.Fprintln(w, "-- stacked --")
		if err := printTable(w, "x", d.Names, s.Data, rows); err != nil {
			return err
		}
		for _, b := range s.Bands {
			fmt.Fprintf(w, "band %d over %d\n", b.Series[0], b.Series[1])
		}
	}
	return nil
}

func printTable(w io.Writer, xName string, names []string, t align.Table, rows int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", xName, strings.Join(names, "\t"))
	n := t.Len()
	if rows > 0 && rows < n {
		n = rows
	}
	for i := 0; i < n; i++ {
		cells := make([]string, len(t.Series))
		for s := range t.Series {
			cells[s] = t.Series[s][i].String()
		}
		fmt.Fprintf(tw, "%s\t%s\n", render.FormatTick(t.X[i]), strings.Join(cells, "\t"))
	}
	if n < t.Len() {
		fmt.Fprintf(tw, "... %d more rows\n", t.Len()-n)
	}
	return tw.Flush()
}

func inspectHeatmaps(w io.Writer, c *panel.Controller) error {
	opts, d := c.Options(), c.Data()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tbuckets\tcolumns\ttotal\tfocus")
	for _, m := range d.Heatmaps {
		total := 0.0
		for _, row := range m.Counts {
			for _, v := range row {
				total += v
			}
		}
		f := m.Focus(opts.FocusTrim)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s..%s\n", m.Name, m.NumBuckets(), len(m.Timestamps),
			render.FormatTick(total), render.FormatTick(f.MinY), render.FormatTick(f.MaxY))
	}
	return tw.Flush()
}
