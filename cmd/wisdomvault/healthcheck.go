package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/config"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/httpserver"
)

func newHealthcheckCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check the readiness endpoint of a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" {
				cfg, err := config.Load[httpserver.Config]()
				if err != nil {
					return err
				}
				url = readinessURL(cfg.Addr)
			}
			if err := checkReady(cmd.Context(), url, timeout); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "READY")
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "readiness URL (defaults to the local HTTP_ADDR)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	return cmd
}

// readinessURL points at the readiness endpoint of a server listening on addr.
func readinessURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/health/ready"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/health/ready"
}

func checkReady(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck: %s answered %d", url, resp.StatusCode)
	}
	return nil
}
