package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"autoremedy/internal/classifier"
	"autoremedy/internal/model"
	"autoremedy/internal/planner"
)

var (
	classifyManifest string
	classifyRules    string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <log-file|->",
	Short: "Classify a build log and print the remediation plan",
	Long: `Runs the error classifier over a captured build log and shows what the
service would change in the manifest. Nothing is written or pushed.

Examples:
  autoremedy classify build.log
  autoremedy classify --manifest site/Gemfile - < build.log`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyManifest, "manifest", "m", "Gemfile", "manifest to plan against")
	classifyCmd.Flags().StringVarP(&classifyRules, "rules", "r", "", "rule file (default: built-in rules)")
}

type classifyReport struct {
	Findings []model.ErrorFinding      `json:"findings"`
	Actions  []model.RemediationAction `json:"actions"`
	Warnings []string                  `json:"warnings,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	text, err := readLog(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	report, err := classifyLog(text, classifyRules, classifyManifest)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func readLog(stdin io.Reader, arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}
	return string(data), nil
}

// classifyLog runs the read-only half of the pipeline. A missing manifest is planned as empty.
func classifyLog(text, rulesPath, manifestPath string) (classifyReport, error) {
	table, err := classifier.LoadRules(rulesPath)
	if err != nil {
		return classifyReport{}, err
	}
	findings := classifier.New(table).Classify(text)

	content, err := os.ReadFile(manifestPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return classifyReport{}, fmt.Errorf("read manifest: %w", err)
	}

	target, err := filepath.Abs(manifestPath)
	if err != nil {
		return classifyReport{}, err
	}
	plan := planner.New(nil).Plan(findings, string(content), target)

	report := classifyReport{
		Findings: findings,
		Actions:  plan.Actions,
		Warnings: plan.Warnings,
	}
	if report.Findings == nil {
		report.Findings = []model.ErrorFinding{}
	}
	if report.Actions == nil {
		report.Actions = []model.RemediationAction{}
	}
	return report, nil
}
