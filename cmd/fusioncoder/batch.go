package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fusionworks/fusioncoder/core"
)

// batchEntry is one task in a batch file: the request envelope with a raw
// payload decoded per task type.
type batchEntry struct {
	WorkflowID string          `json:"workflowId,omitempty"`
	Task       core.TaskType   `json:"taskType"`
	Complexity core.Complexity `json:"complexity,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "batch <tasks.json>",
		Short: "Run every workflow in a JSON task file concurrently",
		Long: "The task file holds a JSON array of requests, each with taskType, " +
			"optional complexity and workflowId, and a payload object. Failures are " +
			"isolated per task; the command reports all results.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, root, args[0], outDir)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "also save each result to a timestamped file in this directory")
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, path, outDir string) error {
	cfg, logger, err := root.load()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries []batchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse task file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("task file %s holds no tasks", path)
	}

	reqs := make([]core.WorkflowRequest, 0, len(entries))
	for i, e := range entries {
		payload, err := core.DecodePayload(e.Task, e.Payload)
		if err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		reqs = append(reqs, core.WorkflowRequest{
			ID:         e.WorkflowID,
			Task:       e.Task,
			Complexity: e.Complexity,
			Payload:    payload,
		})
	}

	orch, err := buildOrchestrator(cfg, root, logger)
	if err != nil {
		return err
	}

	results := orch.CreateBatch(cmd.Context(), reqs)

	if outDir != "" {
		for _, r := range results {
			if _, err := saveResult(outDir, r); err != nil {
				return err
			}
		}
	}
	return printJSON(cmd, results)
}
