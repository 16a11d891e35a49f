package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openagent-dev/openagent/internal/provider"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models per provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tMODEL\tNAME\tCONTEXT\tTOOLS")
		for _, m := range provider.Catalog() {
			tools := "no"
			if m.SupportsTools {
				tools = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", m.ProviderID, m.ID, m.Name, m.ContextLength, tools)
		}
		return w.Flush()
	},
}
