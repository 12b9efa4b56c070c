package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/chatsniff/internal/log"
	"firestige.xyz/chatsniff/internal/source"
)

var sniffCmd = &cobra.Command{
	Use:   "sniff",
	Short: "Capture live chat traffic",
	Long: `Capture live traffic from a network interface and report chat broadcasts.

Capturing requires root or CAP_NET_RAW. Stop with Ctrl-C.

Examples:
  chatsniff sniff                              # lo, port 8080, console output
  chatsniff sniff -i eth0 -p 9000              # other interface and port
  chatsniff sniff -c chatsniff.yml --engine afpacket`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSniff(cmd)
	},
}

func init() {
	sniffCmd.Flags().StringP("interface", "i", "", "interface to capture on (overrides config)")
	sniffCmd.Flags().Uint16P("port", "p", 0, "chat server port (overrides config)")
	sniffCmd.Flags().String("engine", "", "capture engine: pcap or afpacket (overrides config)")
}

func runSniff(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("interface") {
		cfg.Capture.Interface, _ = flags.GetString("interface")
	}
	if flags.Changed("port") {
		cfg.Capture.Port, _ = flags.GetUint16("port")
	}
	if flags.Changed("engine") {
		cfg.Capture.Engine, _ = flags.GetString("engine")
	}
	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return err
	}

	src, err := source.Open(cfg.Capture)
	if err != nil {
		return describeOpenError(err)
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.GetLogger().WithFields(map[string]interface{}{
		"interface": cfg.Capture.Interface,
		"engine":    cfg.Capture.Engine,
		"filter":    cfg.Capture.Filter(),
	}).Info("capture started")

	return runPipeline(ctx, cfg, src, cfg.Capture.Interface)
}
