package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ordersim/swarm/internal/loadgen"
	"github.com/ordersim/swarm/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in traffic profiles and ramp shapes",
	Run:   runProfiles,
}

func runProfiles(cmd *cobra.Command, args []string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "PROFILES")
	for _, p := range profile.Builtin() {
		fmt.Fprintf(w, "  %s\t%s\n", p.Name, p.Description)
		fmt.Fprintf(w, "  \twait %s, chaos: %s\n", p.Wait, p.Chaos)
		total := p.TotalWeight()
		for _, t := range p.Tasks {
			fmt.Fprintf(w, "  \t  %s\tweight %d (%.0f%%)\n",
				t.Name, t.Weight, 100*float64(t.Weight)/float64(total))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "SHAPES")
	for _, s := range []*loadgen.Shape{loadgen.StepShape(), loadgen.SpikeShape()} {
		fmt.Fprintf(w, "  %s\t(%s total)\n", s.Name, s.Total())
		for _, st := range s.Stages {
			fmt.Fprintf(w, "  \tuntil %s\t%d users\tspawn %.0f/s\n",
				st.Until, st.Users, st.SpawnRate)
		}
	}

	w.Flush()
}
