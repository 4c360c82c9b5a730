package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fusionworks/fusioncoder/agent"
	"github.com/fusionworks/fusioncoder/cache"
	"github.com/fusionworks/fusioncoder/cloud"
	"github.com/fusionworks/fusioncoder/config"
	"github.com/fusionworks/fusioncoder/core"
	"github.com/fusionworks/fusioncoder/logging"
	"github.com/fusionworks/fusioncoder/model"
	"github.com/fusionworks/fusioncoder/model/anthropic"
	"github.com/fusionworks/fusioncoder/model/openai"
	"github.com/fusionworks/fusioncoder/workflow"
)

// rootOptions carries flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	agents     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "fusioncoder",
		Short:         "AI-assisted code workflow engine",
		Long:          "fusioncoder orchestrates role-specialized agents through bounded conversations to generate, optimize, review, design and plan deployments of code.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	cmd.PersistentFlags().StringVar(&opts.agents, "agents", "scripted", "agent backend: scripted, anthropic or openai")

	cmd.AddCommand(
		newRunCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load resolves config and logger for a subcommand invocation.
func (o *rootOptions) load() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    os.Stderr,
		Component: "fusioncoder",
	})
	return cfg, logger, nil
}

// provider resolves the agent backend flag into an AgentProvider.
func (o *rootOptions) provider() (workflow.AgentProvider, error) {
	switch o.agents {
	case "scripted":
		return func(desc core.AgentDescriptor) core.Agent {
			return agent.NewScriptedDefault(desc)
		}, nil
	case "anthropic":
		mdl := anthropic.NewModel()
		return modelProvider(mdl), nil
	case "openai":
		mdl := openai.NewModel()
		return modelProvider(mdl), nil
	}
	return nil, fmt.Errorf("unknown agent backend %q", o.agents)
}

func modelProvider(mdl model.Model) workflow.AgentProvider {
	return func(desc core.AgentDescriptor) core.Agent {
		return agent.NewModelAgent(desc, mdl)
	}
}

// buildOrchestrator assembles the orchestrator with the configured cache and
// cloud path.
func buildOrchestrator(cfg *config.Config, opts *rootOptions, logger logging.Logger) (*workflow.Orchestrator, error) {
	provider, err := opts.provider()
	if err != nil {
		return nil, err
	}

	var dispatcher workflow.CloudDispatcher
	if cfg.Cloud.Enabled {
		var backend core.CloudBackend
		if cfg.Cloud.Endpoint == "" {
			backend = cloud.NewScriptedBackend()
		} else {
			backend = cloud.NewHTTPBackend(cfg.Cloud.Endpoint, func(o *cloud.HTTPOptions) {
				o.APIKey = cfg.Cloud.APIKey
				o.Timeout = cfg.Cloud.Timeout
			})
		}

		var responseCache *cache.Cache
		if cfg.Cache.Enabled {
			responseCache = cache.New(func(o *cache.Options) {
				o.MaxSize = cfg.Cache.MaxSize
				o.TTL = cfg.Cache.TTL
				o.Path = cfg.Cache.Path
				o.Logger = logger
			})
		}

		dispatcher, err = cloud.NewDispatcher(backend, func(o *cloud.Options) {
			o.Cache = responseCache
			o.Logger = logger
		})
		if err != nil {
			return nil, err
		}
	}

	return workflow.New(func(o *workflow.Options) {
		o.Provider = provider
		o.Cloud = dispatcher
		o.Timeout = cfg.Workflow.Timeout
		o.BatchConcurrency = cfg.Workflow.BatchConcurrency
		o.Logger = logger
	})
}
