package cli

import (
	"github.com/mgpai22/chaptrack/internal/config"
	"github.com/mgpai22/chaptrack/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     = logging.Nop()
	cfg        = defaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "chaptrack",
	Short: "Chapter text tracks for movies",
	Long: `Chaptrack builds, inspects and edits chapter text tracks.

A chapter track is a text track whose samples name the chapters of a
video or sound track. Chapter tracks can be loaded from SRT, VTT or ASS
files, kept in project files, searched, edited, translated, and embedded
into movie files with ffmpeg.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, resolved, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debugw("Loaded configuration",
			"path", resolved,
			"exists", exists,
		)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func defaultConfig() *config.Config {
	c := config.Default()
	return &c
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/chaptrack/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
