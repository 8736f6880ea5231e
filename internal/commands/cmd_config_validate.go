package commands

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/core/config"
	"github.com/hay-kot/taskdeck/internal/printer"
	"github.com/hay-kot/taskdeck/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "taskdeck config validate [options]",
				Description: "Validates the configuration file, checking values, the data directory and known themes.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type configIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []configIssue              `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	report := cmd.validate()

	if cmd.format == "json" {
		if err := iojson.Write(c.Root().Writer, report); err != nil {
			return err
		}
	} else {
		cmd.outputText(printer.Ctx(ctx), report)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

// validate reloads the file so that errors the Before hook tolerated are
// reported here.
func (cmd *ConfigValidateCmd) validate() validationReport {
	var report validationReport

	cfg, err := config.Load(cmd.flags.ConfigPath, cmd.flags.DataDir)
	if err == nil {
		err = cfg.ValidateDeep(cmd.flags.ConfigPath)
		report.Warnings = cfg.Warnings()
	}

	report.Errors = issues(err)
	report.Valid = len(report.Errors) == 0
	return report
}

func issues(err error) []configIssue {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []configIssue{{Field: "config_file", Message: err.Error()}}
	}

	out := make([]configIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, configIssue{Field: fe.Field, Message: fe.Err.Error()})
	}
	return out
}

func (cmd *ConfigValidateCmd) outputText(p *printer.Printer, report validationReport) {
	for _, warn := range report.Warnings {
		p.Warnf("%s: %s", warn.Category, warn.Message)
		if warn.Item != "" {
			p.Printf("  Item: %s", warn.Item)
		}
	}

	for _, issue := range report.Errors {
		p.Errorf("%s: %s", issue.Field, issue.Message)
	}

	p.Printf("")
	if report.Valid {
		p.Successf("Configuration is valid")
		return
	}
	p.Errorf("%d error(s) found", len(report.Errors))
}
