package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Populated via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

func buildInfo() versionInfo {
	return versionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the lens version, commit, build date, and Go runtime details.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildInfo()
		out := cmd.OutOrStdout()

		if outputJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Fprintf(out, "lens %s (%s, %s)\n", info.Version, info.Commit, info.Date)
		fmt.Fprintf(out, "  %s %s/%s\n", info.Go, info.OS, info.Arch)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
