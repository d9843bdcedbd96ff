package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/go-kutil/util"
)

var (
	flagVerbose int
	flagLogFile string
	version     = "dev" // Injected at build time via ldflags
)

var rootCmd = &cobra.Command{
	Use:     "templfmt",
	Short:   "Format embedded scripts and class attributes in templ files",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var path *string
		if flagLogFile != "" {
			path = &flagLogFile
		}
		commonlog.Configure(flagVerbose, path)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase log verbosity (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(versionCmd)
}

// main exits through util.Exit so buffered log output is flushed.
func main() {
	if err := rootCmd.Execute(); err != nil {
		util.Exit(1)
	}
	util.Exit(0)
}
