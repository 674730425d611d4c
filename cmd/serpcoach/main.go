package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zen-systems/serpcoach/pkg/config"
	"github.com/zen-systems/serpcoach/pkg/conversation"
	"github.com/zen-systems/serpcoach/pkg/provider"
	"github.com/zen-systems/serpcoach/pkg/serp"
	"github.com/zen-systems/serpcoach/pkg/turn"
)

var (
	configFile   string
	providerFlag string
	debugFlag    bool
	jsonFlag     bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "serpcoach",
		Short: "SEO critique assistant for page titles and meta descriptions",
		Long: `serpcoach critiques a page title or meta description candidate,
compares it with top competitor results, and keeps the exchange as a
turn-by-turn conversation.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default ~/.serpcoach/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "analysis provider (local, openai, anthropic, google, deepseek)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "print session snapshots as JSON")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(providersCmd())
	rootCmd.AddCommand(requestCmd())

	return rootCmd
}

type session struct {
	cfg        *config.Config
	registry   *provider.Registry
	controller *conversation.Controller
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if providerFlag != "" {
		cfg.Provider = strings.ToLower(providerFlag)
	}
	if debugFlag {
		cfg.Debug = true
	}
	return cfg, nil
}

func newSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	registry, err := provider.DefaultRegistry(cfg.ProviderOverrides())
	if err != nil {
		return nil, fmt.Errorf("failed to create providers: %w", err)
	}

	client := provider.NewClient(
		provider.WithTimeout(cfg.Timeout),
		provider.WithRetry(cfg.RetryPolicy()),
		provider.WithClientLogger(log.Printf, cfg.Debug),
	)

	controller, err := conversation.New(registry, cfg.Provider,
		conversation.WithClient(client),
		conversation.WithSecrets(cfg.Secret),
		conversation.WithDebug(cfg.Debug),
	)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, registry: registry, controller: controller}, nil
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive critique session",
		Long: `Reads one title or meta description per line and prints the critique.

Commands:
  /reset            clear the conversation
  /provider <id>    switch the analysis provider
  /quit             leave the session`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), s.controller, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(ctx context.Context, c *conversation.Controller, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	printed := 0
	lastState := c.Snapshot().State
	c.Subscribe(func(snap conversation.Snapshot) {
		entered := snap.State != lastState
		lastState = snap.State
		if len(snap.Turns) < printed {
			printed = 0
		}
		if jsonFlag {
			_ = writeJSON(out, snap)
			return
		}
		for _, t := range snap.Turns[printed:] {
			if t.Role == turn.RoleAssistant {
				renderTurn(out, t)
			}
		}
		printed = len(snap.Turns)
		if entered && snap.State == conversation.StateError && snap.LastError != "" {
			fmt.Fprintf(out, "! %s\n\n", snap.LastError)
		}
	})

	fmt.Fprintf(out, "serpcoach (%s). Enter a title or meta description, /quit to exit.\n", c.Snapshot().ActiveProvider)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		cmd := strings.TrimSpace(line)

		switch {
		case cmd == "/quit" || cmd == "/exit":
			return nil
		case cmd == "/reset":
			c.Reset()
			fmt.Fprintln(out, "Conversation cleared.")
		case strings.HasPrefix(cmd, "/provider"):
			id := strings.TrimSpace(strings.TrimPrefix(cmd, "/provider"))
			if err := c.SetProvider(id); err != nil {
				fmt.Fprintf(out, "! %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Using %s.\n", c.Snapshot().ActiveProvider)
		default:
			// Failures surface through the snapshot's LastError.
			_ = c.Submit(ctx, line)
		}
	}
	return scanner.Err()
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [text]",
		Short: "Critique a single title or meta description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			submitErr := s.controller.Submit(ctx, args[0])

			snap := s.controller.Snapshot()
			out := cmd.OutOrStdout()
			if jsonFlag {
				if err := writeJSON(out, snap); err != nil {
					return err
				}
			} else {
				renderLog(out, snap.Turns)
			}

			if submitErr != nil {
				if snap.LastError != "" {
					return fmt.Errorf("%s", snap.LastError)
				}
				return fmt.Errorf("nothing to analyze")
			}
			return nil
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List analysis providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			registry, err := provider.DefaultRegistry(cfg.ProviderOverrides())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tENDPOINT\tSTATUS\tACTIVE")
			for _, id := range registry.IDs() {
				p, err := registry.Get(id)
				if err != nil {
					return err
				}
				endpoint := p.Endpoint()
				if endpoint == "" {
					endpoint = "-"
				}
				status := "no key"
				if cfg.HasKey(id) {
					status = "ready"
				}
				active := ""
				if id == cfg.Provider {
					active = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, endpoint, status, active)
			}
			return w.Flush()
		},
	}
}

func requestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "request [text]",
		Short: "Show the request the active provider would send",
		Long: `Builds the provider request for the given text without sending it.
Credentials are redacted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			registry, err := provider.DefaultRegistry(cfg.ProviderOverrides())
			if err != nil {
				return err
			}
			p, err := registry.Get(cfg.Provider)
			if err != nil {
				return err
			}

			topic, err := serp.Topic(args[0])
			if err != nil {
				return err
			}
			competitors, err := serp.NewStaticSampler().Sample(topic)
			if err != nil {
				return err
			}

			desc, err := provider.Describe(p, cfg.Secret(cfg.Provider), args[0], competitors)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), desc)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
