//nolint:gochecknoglobals,gochecknoinits // Cobra CLI pattern
package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mrz1836/vigil/internal/version"
)

// Build information, injected via -ldflags at release time.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := map[string]string{
			"version": buildVersion,
			"commit":  buildCommit,
			"date":    buildDate,
			"go":      runtime.Version(),
			"os_arch": runtime.GOOS + "/" + runtime.GOARCH,
		}

		if versionCheck {
			release, err := version.GetLatestRelease(cmd.Context(), "mrz1836", "vigil")
			if err != nil {
				logger.Error("release check failed: %v", err)
				info["latest"] = "unavailable"
			} else {
				info["latest"] = release.TagName
				if version.IsNewerVersion(buildVersion, release.TagName) {
					info["update_available"] = "true"
				}
			}
		}

		return formatter.Print(info)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
