package cmd

import (
	"fmt"

	"bsprep/internal/buildcache"
	"bsprep/internal/color"
	"bsprep/internal/config"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset local build numbers",
		Long: `Outside CI, ${BUILD_NUMBER} is taken from a per build name counter stored in
~/.browserstack/.build-name-cache.json (or the configured cacheFile).`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the location of the build number cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cache.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <build-name>",
		Short: "Show the last build number used for a build name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache()
			if err != nil {
				return err
			}
			n, ok, err := cache.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), color.Muted(fmt.Sprintf("No build number recorded for %q", args[0])))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.KeyValue(args[0], fmt.Sprintf("%d", n)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <build-name>",
		Short: "Forget the build number of a build name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache()
			if err != nil {
				return err
			}
			removed, err := cache.Reset(args[0])
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintln(cmd.OutOrStdout(), color.Success(fmt.Sprintf("✓ Build number for %q reset", args[0])))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), color.Muted(fmt.Sprintf("No build number recorded for %q", args[0])))
			}
			return nil
		},
	})

	return cmd
}

// openCache opens the cache named by the configuration, falling back to the
// default location.
func openCache() (*buildcache.Cache, error) {
	var (
		settings config.Config
		err      error
	)
	if configPath != "" {
		settings, err = config.LoadConfigFromPath(configPath)
	} else {
		settings, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if settings.CacheFile != "" {
		return buildcache.New(settings.CacheFile), nil
	}
	return buildcache.NewDefault()
}
