package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/gallerysync/internal/adapter"
)

func newSetupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure the feed client id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := runSetupFlow(cfg, os.Stdin, cmd.OutOrStdout()); err != nil {
				return err
			}
			path, err := adapter.SaveConfig(cfg, opts.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Configuration saved to %s\n", path)
			return nil
		},
	}
}

// runSetupFlow prompts for the feed settings, keeping current values on empty input
func runSetupFlow(cfg *adapter.Config, in *os.File, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Welcome to gallerysync!")
	fmt.Fprintln(out)

	url, err := prompt(reader, out, "Feed URL", cfg.Feed.URL)
	if err != nil {
		return err
	}
	cfg.Feed.URL = url

	tags, err := prompt(reader, out, "Query tags", cfg.Feed.QueryTags)
	if err != nil {
		return err
	}
	cfg.Feed.QueryTags = tags

	for {
		fmt.Fprint(out, "Client ID: ")
		var clientID string
		if term.IsTerminal(int(in.Fd())) {
			b, err := term.ReadPassword(int(in.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("failed to read client id: %w", err)
			}
			clientID = string(b)
		} else {
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read client id: %w", err)
			}
			clientID = line
		}

		clientID = strings.TrimSpace(clientID)
		if clientID == "" && cfg.Feed.ClientID != "" {
			return nil
		}
		if clientID == "" {
			fmt.Fprintln(out, "Client ID cannot be empty. Please try again.")
			continue
		}
		cfg.Feed.ClientID = clientID
		return nil
	}
}

func prompt(reader *bufio.Reader, out io.Writer, label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if v := strings.TrimSpace(input); v != "" {
		return v, nil
	}
	return current, nil
}
