package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hpratama/ingatan/internal/relay"
	"github.com/hpratama/ingatan/internal/web"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Start the caregiver relay server",
	Long: `Start the relay server that sits between the wearable and the
caregiver. The wearable submits captured faces here, the caregiver web
app reviews and approves them, and the wearable pulls the approved
people back down into its local registry.`,
	RunE: runRelay,
}

func init() {
	rootCmd.AddCommand(relayCmd)

	relayCmd.Flags().Int("port", 3000, "Port to listen on")
	relayCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveRelayHostPort resolves port and host from flags and environment variables.
func resolveRelayHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("RELAY_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("RELAY_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runRelay(cmd *cobra.Command, args []string) error {
	port, host := resolveRelayHostPort(cmd)

	queue := relay.NewQueue()
	routines := relay.NewRoutineStore()
	server := web.NewServer(queue, routines, host, port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting relay on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
