package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/pvsim/internal/storage"
)

func listTraces(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traces, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(traces) == 0 {
		fmt.Fprintln(out, "no traces found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTEPS\tWORK (J)\tEFFICIENCY")
	for _, tr := range traces {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%.4f\n",
			tr.ID,
			tr.Name,
			tr.Timestamp.Format("2006-01-02 15:04:05"),
			tr.Steps,
			tr.Work,
			tr.Metrics["efficiency"],
		)
	}
	return w.Flush()
}

func plotTrace(cmd *cobra.Command, args []string) error {
	id := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(id)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "trace: %s\n", meta.ID)
	fmt.Fprintf(out, "gas: n = %g mol, dof = %g\n", meta.Gas.N, meta.Gas.DOF)
	fmt.Fprintf(out, "samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		value   func(storage.Sample) float64
	}{
		{"pressure (Pa) vs step", func(s storage.Sample) float64 { return s.Pressure }},
		{"volume (m^3) vs step", func(s storage.Sample) float64 { return s.Volume }},
		{"accumulated work (J) vs step", func(s storage.Sample) float64 { return s.Work }},
	}
	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, smp := range samples {
			data[i] = sr.value(smp)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%-12s %.6f\n", name, meta.Metrics[name])
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	samples, err := storage.New(dataDir).LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteCSV(cmd.OutOrStdout(), samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	id := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(id)
	if err != nil {
		return err
	}
	return storage.ExportJSON(cmd.OutOrStdout(), *meta, samples)
}
