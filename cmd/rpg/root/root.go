package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adhdrpg/internal/config"
	"adhdrpg/internal/ui"
)

const Version = "0.3.0"

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:           "rpg",
	Short:         "ADHD RPG: turn your day into quests",
	Long:          "A local-first role-playing game for getting things done: quests, XP, streaks, health gauges and an AI companion.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := config.New(cfgFile)
		if err := config.BindFlags(v, cmd.Flags(), map[string]string{
			"db":       "db_path",
			"catalog":  "catalog_path",
			"provider": "companion.provider",
			"addr":     "server.addr",
		}); err != nil {
			return err
		}
		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.adhdrpg.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Database path (default ~/.adhdrpg.db)")
	rootCmd.PersistentFlags().String("catalog", "", "Catalog YAML overriding the built-in one")
	rootCmd.PersistentFlags().String("provider", "", "Companion provider (http|anthropic|none)")

	rootCmd.AddCommand(
		newStatusCmd(),
		newQuestCmd(),
		newHealthCmd(),
		newGoldCmd(),
		newStreakCmd(),
		newSkillCmd(),
		newMoodCmd(),
		newRepeatCmd(),
		newFocusCmd(),
		newMainQuestCmd(),
		newSeasonCmd(),
		newAchievementsCmd(),
		newStatsCmd(),
		newChatCmd(),
		newBoardCmd(),
		newServeCmd(),
		newExportCmd(),
		newImportCmd(),
		newResetCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "rpg v%s\n", Version)
			return nil
		},
	}
}
