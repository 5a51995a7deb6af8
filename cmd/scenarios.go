package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/fc-shift-sim/sim/catalog"
)

// scenariosCmd lists the scenario catalog
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the scenario catalog",
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := loadCatalog(catalogPath)
		if err != nil {
			logrus.Fatalf("unable to load catalog: %v", err)
		}
		printScenarios(os.Stdout, cat)
	},
}

func printScenarios(w io.Writer, cat *catalog.Catalog) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tMIN\tHC\tEVENTS")
	for i, sc := range cat.Scenarios {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n", i, sc.ID, sc.Name, sc.ShiftMinutes, sc.PlannedHeadcount, len(sc.Scheduled))
	}
	_ = tw.Flush()
}
