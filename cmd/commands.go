package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/skilltree-backend/internal/app"
	"github.com/yungbote/skilltree-backend/internal/data/db"
	"github.com/yungbote/skilltree-backend/internal/modules/generation"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(os.Getenv("LOG_MODE"))
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()
			cfg, err := app.LoadConfig(log)
			if err != nil {
				return err
			}
			gdb, err := db.Open(cfg.DB(), log)
			if err != nil {
				return err
			}
			defer db.Close(gdb)
			if err := db.AutoMigrateAll(gdb); err != nil {
				return fmt.Errorf("automigrate: %w", err)
			}
			log.Info("Schema migrated", "driver", cfg.DB().Driver)
			return nil
		},
	}
}

func newGenerateCommand() *cobra.Command {
	var (
		topic      string
		agent      string
		maxSources int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Research a topic and generate a domain once, printing the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(topic) == "" {
				return fmt.Errorf("--topic is required")
			}
			if maxSources < 1 || maxSources > generation.MaxMaxSources {
				return fmt.Errorf("--max-sources must be between 1 and %d", generation.MaxMaxSources)
			}
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			agentType, ok := generation.ResolveAgentType(agent, a.Cfg.DefaultAgent())
			if !ok {
				return fmt.Errorf("unknown agent type %q", agent)
			}
			out, genErr := a.Services.Generation.GenerateDomain(cmd.Context(), generation.GenerateDomainInput{
				Topic:      topic,
				AgentType:  agentType,
				MaxSources: maxSources,
			})
			resp := generation.CompletedResponse(out)
			if genErr != nil {
				resp = generation.FailedResponse(strings.TrimSpace(topic), out.RunID, genErr)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			return genErr
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "topic to build a domain for")
	cmd.Flags().StringVar(&agent, "agent", "", "AI agent type (defaults to DEFAULT_AGENT_TYPE)")
	cmd.Flags().IntVar(&maxSources, "max-sources", generation.DefaultMaxSources, "maximum research sources")
	return cmd
}

func newAgentsCommand() *cobra.Command {
	agents := &cobra.Command{
		Use:   "agents",
		Short: "Manage AI agent configurations",
	}

	var file string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Upsert agent configs from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := a.Services.AgentConfig.SeedFromFile(cmd.Context(), file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d agent configs\n", n)
			return nil
		},
	}
	seed.Flags().StringVar(&file, "file", "configs/agents.yaml", "YAML seed file")

	list := &cobra.Command{
		Use:   "list",
		Short: "Print stored agent configs (credentials are never printed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			cfgs, err := a.Services.AgentConfig.ListAgentConfigs(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfgs)
		},
	}

	agents.AddCommand(seed, list)
	return agents
}
