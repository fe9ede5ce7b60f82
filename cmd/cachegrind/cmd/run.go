package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/janisozaur/valgrind/internal/driver"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("cachegrind-out-file", "o", "", "report file (default cachegrind.out.<pid>)")
	runCmd.Flags().String("debug-info", "", "ELF or Mach-O binary to read DWARF line info from")
	runCmd.Flags().String("stats-yaml", "", "write totals and statistics as YAML to this file")
	runCmd.Flags().BoolP("quiet", "q", false, "do not print the summary")

	viper.BindPFlag("run.cachegrind-out-file", runCmd.Flags().Lookup("cachegrind-out-file"))
	viper.BindPFlag("run.debug-info", runCmd.Flags().Lookup("debug-info"))
	viper.BindPFlag("run.stats-yaml", runCmd.Flags().Lookup("stats-yaml"))
	viper.BindPFlag("run.quiet", runCmd.Flags().Lookup("quiet"))
}

var runCmd = &cobra.Command{
	Use:   "run <TRACE> [-- CMD...]",
	Short: "Replay an event trace through the cache simulator and write a report",
	Example: `  ❯ cachegrind run --D1 32768,8,64 prog.trace -- ./prog --fast
  ❯ gen-trace ./prog | cachegrind run -`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		caches, err := userCaches()
		if err != nil {
			return err
		}

		var prog []string
		if dash := cmd.ArgsLenAtDash(); dash >= 0 {
			prog = args[dash:]
			args = args[:dash]
		}
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one trace file, got %d", len(args))
		}
		if len(prog) == 0 {
			prog = args[:1]
		}

		res, err := driver.Run(driver.Config{
			TracePath: args[0],
			Cmd:       prog,
			OutFile:   viper.GetString("run.cachegrind-out-file"),
			Caches:    caches,
			DebugInfo: viper.GetString("run.debug-info"),
			Verbose:   viper.GetBool("verbose"),
			Quiet:     viper.GetBool("run.quiet"),
			Color:     viper.GetBool("color"),
			StatsYAML: viper.GetString("run.stats-yaml"),
			Logger:    newLogger(viper.GetBool("run.quiet")),
		})
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"events": res.Replay.Lines,
			"report": res.OutFile,
		}).Debug("Done")
		return nil
	},
}
