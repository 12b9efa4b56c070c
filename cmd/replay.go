package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/chatsniff/internal/source"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.pcap>",
	Short: "Replay a pcap file through the tracker",
	Long: `Read a previously captured pcap file and report chat broadcasts exactly as a
live capture would. No privileges are required.

Examples:
  chatsniff replay session.pcap
  chatsniff replay -c chatsniff.yml session.pcap`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReplay(args[0])
	},
}

func runReplay(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, err := source.OpenFile(path, cfg.Capture.Filter())
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runPipeline(ctx, cfg, src, "file")
}
