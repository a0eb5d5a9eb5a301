package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag string
		dirFlag    string
		forceFlag  bool
		watchFlag  bool
	)

	ctx := newCommandContext(&configFlag, &dirFlag, &forceFlag)

	rootCmd := &cobra.Command{
		Use:           "mp4press",
		Short:         "Sort MP4 files by resolution and compress oversized ones",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, watchFlag)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Working directory to process (default: current directory)")
	rootCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Compress every valid file regardless of resolution")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Keep running and process files as they arrive")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))

	return rootCmd
}
