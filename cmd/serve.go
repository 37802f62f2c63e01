package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/celebrity-detector/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Celebrity Detector web server.
The page at / accepts a photo upload, shows the detected face and the identified
celebrity, and answers follow-up questions. A JSON API is served under /api/v1.`,
	RunE: runServe,
}

const shutdownTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 5000, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// Flags win over the environment only when given explicitly.
	if cmd.Flags().Changed("port") {
		a.cfg.Web.Port = mustGetInt(cmd, "port")
	}
	if cmd.Flags().Changed("host") {
		a.cfg.Web.Host = mustGetString(cmd, "host")
	}

	server := web.NewServer(a.cfg, a.service, a.logger)

	fmt.Printf("Starting Celebrity Detector on http://%s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	// Run returns after in-flight requests drain, so the cache and history
	// store stay open until then.
	if err := server.Run(ctx, shutdownTimeout); err != nil {
		return err
	}
	fmt.Println("Server stopped")
	printUsage(a.service.Usage())
	return nil
}
