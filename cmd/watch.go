package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hpratama/ingatan/internal/announce"
	"github.com/hpratama/ingatan/internal/config"
	"github.com/hpratama/ingatan/internal/detector"
	"github.com/hpratama/ingatan/internal/enroll"
	"github.com/hpratama/ingatan/internal/match"
	"github.com/hpratama/ingatan/internal/registry"
	"github.com/hpratama/ingatan/internal/relay"
	"github.com/hpratama/ingatan/internal/session"
	"github.com/hpratama/ingatan/internal/speech"
	"github.com/hpratama/ingatan/internal/syncsvc"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the recognition session on the wearable",
	Long: `Watch a frame spool directory for camera frames, recognize known
faces, announce them and capture unknown ones for caregiver approval.
Approved people are synced back from the relay while the session runs.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("frames", "", "Frame spool directory (overrides FRAMES_DIR)")
	watchCmd.Flags().Bool("mute", false, "Disable spoken announcements")
}

// ttsVoice maps a BCP 47 tag like id-ID to the espeak voice name.
func ttsVoice(locale string) string {
	if i := strings.IndexByte(locale, '-'); i > 0 {
		return locale[:i]
	}
	return locale
}

// buildSpeaker returns the announcement speaker, or a silent one with --mute.
func buildSpeaker(cfg *config.Config, mute bool) announce.Speaker {
	if mute {
		return announce.NopSpeaker{}
	}
	return announce.NewCommandSpeaker(
		cfg.Speech.SpeakCommand,
		ttsVoice(cfg.Speech.Locale),
		cfg.Speech.SpeakRate,
		cfg.Speech.SpeakPitch,
	)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	framesDir := mustGetString(cmd, "frames")
	if framesDir == "" {
		framesDir = cfg.Session.FramesDir
	}
	if framesDir == "" {
		return errors.New("FRAMES_DIR environment variable or --frames flag is required")
	}

	subjectID, err := config.EnsureSubjectID(&cfg.Registry)
	if err != nil {
		return fmt.Errorf("resolving subject id: %w", err)
	}

	reg, err := registry.New(registry.NewFileStore(cfg.Registry.Path))
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	fmt.Printf("Loaded %d known people from %s\n", reg.Len(), cfg.Registry.Path)

	frames, err := session.NewSpoolSource(framesDir)
	if err != nil {
		return fmt.Errorf("opening frame spool: %w", err)
	}
	defer frames.Close()

	det := detector.NewClient(cfg.Detector.URL, cfg.Detector.MinConfidence)
	relayClient := relay.NewClient(cfg.Relay.URL)

	var engine speech.Engine
	if cfg.Speech.TranscriptPath != "" {
		engine = speech.NewPipeEngine(cfg.Speech.TranscriptPath)
	}
	listener := speech.NewListener(engine)

	announcer := announce.New(buildSpeaker(cfg, mustGetBool(cmd, "mute")))

	syncService := syncsvc.New(relayClient, reg, subjectID, cfg.Session.SyncInterval, nil)
	pipeline := enroll.NewPipeline(relayClient, listener, subjectID, func(string) {
		syncService.TriggerSoon()
	})

	sess := session.New(det, reg, match.MetricByName(cfg.Session.MatchMetric), announcer, pipeline, listener, frames)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nStopping session...")
		cancel()
	}()

	go syncService.Run(ctx)

	fmt.Printf("Watching %s as %s (relay %s)\n", framesDir, subjectID, cfg.Relay.URL)
	fmt.Println("Press Ctrl+C to stop")

	if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("session ended: %w", err)
	}
	return nil
}
