package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowtrigger/internal/format"
	"flowtrigger/internal/logger"
	"flowtrigger/internal/server"
)

var (
	serveAddr string
	serveHost string
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve chat endpoints for workflow tools",
		Long: `Serve the local model over HTTP so a workflow tool can call it.

Endpoints:
  POST /ai-chat    {"message": "...", "model": "mistral", "temperature": 0.8}
  POST /summarize  {"text": "..."}`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", server.DefaultAddr, "Listen address")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Ollama address (or set OLLAMA_HOST)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := newOllamaClient(serveHost)
	if err != nil {
		return err
	}

	// Access logs are the point of a server, so log at info unless verbose
	accessLog := log
	if !verbose {
		accessLog = logger.New(logger.Config{Level: "info", Format: logFormat, Output: cmd.ErrOrStderr()})
	}

	out := cmd.OutOrStdout()
	format.PrintSuccess(out, fmt.Sprintf("Serving on %s", serveAddr))
	fmt.Fprintln(out, "  POST /ai-chat   - General AI chat")
	fmt.Fprintln(out, "  POST /summarize - Text summarization")

	srv := server.New(c, accessLog)
	if err := srv.Start(cmd.Context(), serveAddr); err != nil {
		return err
	}
	accessLog.Info("server stopped", zap.String("addr", serveAddr))
	return nil
}
