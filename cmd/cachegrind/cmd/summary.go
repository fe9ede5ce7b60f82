package cmd

import (
	"os"

	"github.com/apex/log"
	"github.com/janisozaur/valgrind/internal/report"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().Bool("stats-yaml", false, "print totals as YAML instead")
	viper.BindPFlag("summary.stats-yaml", summaryCmd.Flags().Lookup("stats-yaml"))
}

var summaryCmd = &cobra.Command{
	Use:   "summary <REPORT>",
	Short: "Print the summary of a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrapf(err, "failed to open %s", args[0])
		}
		defer f.Close()

		rep, err := report.Parse(f)
		if err != nil {
			return errors.Wrapf(err, "failed to parse %s", args[0])
		}
		if rep.Sum() != rep.Summary {
			log.Warnf("summary line of %s does not match the sum of its records", args[0])
		}

		if viper.GetBool("summary.stats-yaml") {
			return report.WriteStatsYAML(os.Stdout, report.NewStatsDump(rep.Header, rep.Totals(), report.Stats{}))
		}
		return report.PrintSummary(os.Stdout, rep.Totals(), report.SummaryOptions{Color: viper.GetBool("color")})
	},
}
