package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/philipparndt/mtlrelink/internal/config"
	"github.com/philipparndt/mtlrelink/internal/logging"
	"github.com/philipparndt/mtlrelink/pkg/relink"
	"github.com/philipparndt/mtlrelink/version"
)

// configKey is used to store the loaded config in the command context
type configKey struct{}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "mtlrelink",
		Short: "Point the mtllib lines of .obj meshes at one shared material library",
		Long: `mtlrelink walks a directory tree and rewrites the mtllib line of every .obj
mesh file so that all meshes use the same material library.

With --cleanup the material files that were replaced are deleted, each one
resolved relative to the directory of the mesh that referenced it.`,
		Version:       version.GetFullVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Completion scripts need no config
			if cmd.Name() == "completion" || cmd.Name() == "help" || cmd.Name() == "__complete" {
				return nil
			}
			return setup(cmd, cfgFile)
		},
		RunE: runRelink,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	pf.String("root", config.DefaultRoot, "Directory tree to relink")
	pf.String("target", config.DefaultTarget, "Material library every mtllib line is pointed at")
	pf.String("log-level", "info", "Log level (debug|info|warn|error)")

	rootCmd.Flags().Bool("cleanup", false, "Delete the replaced .mtl files")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// setup loads the configuration and puts it, together with a logger, into
// the command context
func setup(cmd *cobra.Command, cfgFile string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), level)
	if cfg.File != "" {
		logger.Debug("using config file", "file", cfg.File)
	}

	ctx := logging.Put(cmd.Context(), logger)
	ctx = context.WithValue(ctx, configKey{}, cfg)
	cmd.SetContext(ctx)
	return nil
}

func configFrom(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(configKey{}).(*config.Config)
	return cfg
}

func runRelink(cmd *cobra.Command, _ []string) error {
	cfg := configFrom(cmd)

	r := relink.New(relink.Options{
		Target:  cfg.Target,
		Cleanup: cfg.Cleanup,
	})
	_, err := r.Run(cmd.Context(), cfg.Root)
	return err
}
