// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Run     RunCmd     `cmd:"" help:"Run a task through the multi-agent workflow"`
	Roles   RolesCmd   `cmd:"" help:"List agent roles and their capabilities"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// RunCmd submits one task and runs it to completion.
type RunCmd struct {
	Query         string `arg:"" help:"The task query"`
	Type          string `short:"t" default:"general" help:"Task type (research, analysis, general, ...)"`
	ID            string `help:"Task ID (generated when omitted)"`
	MaxIterations int    `help:"Supervisor visit ceiling (overrides config)"`
	Config        string `help:"Config file path"`
	Profiles      string `help:"Role profiles YAML path (overrides config)"`
	Plain         bool   `help:"Disable styled report output"`
	JSON          bool   `help:"Print the final task state as JSON instead of the report"`
}

// RolesCmd lists known roles with their declared capabilities.
type RolesCmd struct{}

// VersionCmd shows version information.
type VersionCmd struct{}

func parseCLI() (*CLI, *kong.Context) {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("overseer"),
		kong.Description("Supervisor-driven multi-agent workflow orchestrator"),
		kong.UsageOnError(),
	)
	return cli, ctx
}
