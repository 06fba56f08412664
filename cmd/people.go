package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpratama/ingatan/internal/config"
	"github.com/hpratama/ingatan/internal/registry"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List the local face registry",
	RunE:  runPeople,
}

func init() {
	rootCmd.AddCommand(peopleCmd)
}

func runPeople(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	reg, err := registry.New(registry.NewFileStore(cfg.Registry.Path))
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}

	people := reg.People()
	if len(people) == 0 {
		fmt.Printf("No people in %s yet\n", cfg.Registry.Path)
		return nil
	}

	fmt.Printf("%d people in %s:\n\n", len(people), cfg.Registry.Path)
	for _, p := range people {
		descriptor := "resolved"
		if !p.Resolved() {
			descriptor = "pending (portrait only)"
		}
		lastSeen := "never"
		if !p.LastSeenAt.IsZero() {
			lastSeen = p.LastSeenAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("  %s (%s)\n", p.Name, p.Relation)
		fmt.Printf("    id: %s  source: %s\n", p.ID, p.Source)
		fmt.Printf("    descriptor: %s  last seen: %s\n", descriptor, lastSeen)
	}
	return nil
}
