package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-training/miurev/pkg/config"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var transport string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the catalog tools over MCP",
	Long: `Serve the catalog tools (search, album/artist/track lookups, browse
categories) and show_token_status to MCP clients, over stdio (default) or
streamable HTTP on --addr.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// stdout carries the stdio protocol, so logs go to stderr there.
		logOut := os.Stdout
		if transport == "stdio" {
			logOut = os.Stderr
		}
		cfg, logger, err := loadConfig(logOut, v)
		if err != nil {
			return err
		}

		g, err := newGateway(cfg, logger)
		if err != nil {
			return err
		}

		switch transport {
		case "stdio":
			defer g.Close()
			if err := g.mcpServer().ServeStdio(); err != nil {
				logger.Error("Server error", "error", err)
				return err
			}
			return nil
		case "http":
			router := gin.New()
			router.Use(gin.Recovery())
			mcpHandler := g.mcpServer().ServeHTTP()
			for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
				router.Handle(method, "/mcp", gin.WrapH(mcpHandler))
			}

			m := graceful.NewManager()
			runHTTP(m, logger, cfg.Addr, router)
			m.AddShutdownJob(g.Close)
			<-m.Done()
			return nil
		default:
			_ = g.Close()
			return fmt.Errorf("invalid transport type %q (stdio or http)", transport)
		}
	},
}

func init() {
	flags := mcpCmd.Flags()
	flags.StringVarP(&transport, "transport", "t", "stdio", "transport type (stdio or http)")
	flags.String(config.KeyAddr, ":3000", "address to listen on for the http transport")
}
