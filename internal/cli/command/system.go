package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapkeep/internal/cli/connection"
	"github.com/yndnr/snapkeep/internal/infra/buildinfo"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server status commands",
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check server liveness",
				Action: systemHealth,
			},
			{
				Name:    "ready",
				Aliases: []string{"status"},
				Usage:   "Check whether the server can serve backups",
				Action:  systemReady,
			},
			{
				Name:   "version",
				Usage:  "Show client version",
				Action: systemVersion,
			},
		},
	}
}

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version,omitempty"`
	Encryption *bool  `json:"encryption,omitempty"`
	Time       string `json:"time"`
}

func systemHealth(c *cli.Context) error {
	return probe(c, "/health", "healthy")
}

func systemReady(c *cli.Context) error {
	return probe(c, "/ready", "ready")
}

func probe(c *cli.Context, path, want string) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, path)
	if err != nil {
		fmt.Fprintf(stderr(c), "✗ %s unreachable: %v\n", client.BaseURL(), err)
		return fmt.Errorf("server unreachable")
	}

	var result healthResponse
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if structured(c) {
		return render(c, result)
	}

	w := stdout(c)
	if result.Status != want {
		fmt.Fprintf(w, "✗ Server is %s\n", result.Status)
		return fmt.Errorf("server not %s", want)
	}
	fmt.Fprintf(w, "✓ Server is %s\n", result.Status)
	fmt.Fprintf(w, "  Target:     %s\n", client.BaseURL())
	if result.Version != "" {
		fmt.Fprintf(w, "  Version:    %s\n", result.Version)
	}
	if result.Encryption != nil {
		state := "disabled"
		if *result.Encryption {
			state = "enabled"
		}
		fmt.Fprintf(w, "  Encryption: %s\n", state)
	}
	return nil
}

func systemVersion(c *cli.Context) error {
	info := buildinfo.Get()
	if structured(c) {
		return render(c, map[string]string{
			"version":    info.Version,
			"commit":     info.Commit,
			"build_time": info.BuildTime,
			"go":         info.GoVersion,
		})
	}

	w := stdout(c)
	fmt.Fprintf(w, "snapkeep-cli %s\n", info.Version)
	fmt.Fprintf(w, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "  Built:      %s\n", info.BuildTime)
	fmt.Fprintf(w, "  Go:         %s\n", info.GoVersion)
	return nil
}
