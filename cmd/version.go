package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd prints build metadata, plus the user agent sent to the contact store.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information for contacts.",
	Long: `Print the release, commit and build date of this binary together with
the Go runtime it was built with and the User-Agent it sends to the contact store.`,
	Run: func(cmd *cobra.Command, _ []string) {
		details := [][2]string{
			{"Version", version},
			{"Commit", commit},
			{"Built", date},
			{"Runtime", runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH},
			{"Agent", "contacts/" + version},
		}
		cmd.Println("contacts CLI")
		for _, d := range details {
			cmd.Printf("  %-8s %s\n", d[0]+":", d[1])
		}
	},
}
