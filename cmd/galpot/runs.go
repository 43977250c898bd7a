package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/galpot/internal/render"
	"github.com/san-kum/galpot/internal/storage"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tMETHOD\tELAPSED")

	for _, run := range runs {
		method := run.Method
		if method == "" {
			method = "-"
		}
		res := run.Config.Grid.UpscaleFactor
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%s\t%.1fms\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			res, res,
			method,
			run.ElapsedMS,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	curves, err := st.LoadProfile(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("grid: %d points\n\n", meta.Points)
	fmt.Println(render.ProfileASCII(curves, chartWidth, 15))

	for _, name := range []string{storage.FieldDensity, storage.FieldPotential} {
		if !meta.HasField(name) {
			continue
		}
		f, err := st.LoadField(runID, name)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n", name)
		fmt.Println(render.FieldANSI(f, chartWidth/2))
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0], field)
}

func exportRun(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}
