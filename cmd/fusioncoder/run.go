package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fusionworks/fusioncoder/core"
)

type runOptions struct {
	task        string
	complexity  string
	payload     string
	payloadFile string
	outDir      string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single workflow and print its result",
		Example: `  fusioncoder run --task code_generation --complexity low \
    --payload '{"prompt":"Write a fibonacci function.","language":"python"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.task, "task", "", "task type: "+taskList())
	cmd.Flags().StringVar(&opts.complexity, "complexity", "", "low, medium or high (default medium)")
	cmd.Flags().StringVar(&opts.payload, "payload", "", "task payload as inline JSON")
	cmd.Flags().StringVar(&opts.payloadFile, "payload-file", "", "task payload from a JSON file")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "also save the result to a timestamped file in this directory")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

func runWorkflow(cmd *cobra.Command, root *rootOptions, opts *runOptions) error {
	cfg, logger, err := root.load()
	if err != nil {
		return err
	}

	raw, err := readPayload(opts)
	if err != nil {
		return err
	}
	payload, err := core.DecodePayload(core.TaskType(opts.task), raw)
	if err != nil {
		return err
	}

	orch, err := buildOrchestrator(cfg, root, logger)
	if err != nil {
		return err
	}

	result, err := orch.CreateWorkflow(cmd.Context(), core.WorkflowRequest{
		Task:       core.TaskType(opts.task),
		Complexity: core.Complexity(opts.complexity),
		Payload:    payload,
	})
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		path, err := saveResult(opts.outDir, result)
		if err != nil {
			return err
		}
		logger.Info("result saved", "path", path)
	}
	return printJSON(cmd, result)
}

func readPayload(opts *runOptions) ([]byte, error) {
	switch {
	case opts.payload != "" && opts.payloadFile != "":
		return nil, fmt.Errorf("--payload and --payload-file are mutually exclusive")
	case opts.payload != "":
		return []byte(opts.payload), nil
	case opts.payloadFile != "":
		return os.ReadFile(opts.payloadFile)
	}
	return nil, fmt.Errorf("one of --payload or --payload-file is required")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func taskList() string {
	var s string
	for i, t := range core.SupportedTaskTypes() {
		if i > 0 {
			s += ", "
		}
		s += string(t)
	}
	return s
}
