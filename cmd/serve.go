package cmd

import (
	"log/slog"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"slidegen/internal/app"
	"slidegen/internal/web"
	"slidegen/pkg/config"
)

var (
	serveAddr string
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browser UI",
	Long:  `Serve the slide generator web interface on a local address.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVarP(&serveOpen, "open", "o", false, "Open the UI in a browser")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	server := web.NewServer(ctx, service, app.NewSession(cfg.Generation.Language))

	if serveOpen || cfg.Server.OpenBrowser {
		go func() {
			if err := browser.OpenURL(browserURL(addr)); err != nil {
				slog.Warn("Failed to open browser", "error", err)
			}
		}()
	}

	err = server.Run(ctx, addr)
	server.Wait()
	return err
}

func browserURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
