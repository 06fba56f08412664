package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ingatan",
	Short: "A face recognition memory aid for dementia patients",
	Long: `Ingatan watches camera frames for familiar faces and whispers the
name and relation of recognized people to the wearer. Unknown faces are
captured, paired with a spoken introduction and sent to a caregiver
relay for approval before they join the local face registry.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
