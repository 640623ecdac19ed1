package main

import (
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	helpHeaderStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	helpCmdStyle    = lipgloss.NewStyle().Foreground(colorPrimaryLight)
)

// styleFunc wraps a lipgloss style into a template func that renders only on
// a terminal.
func styleFunc(style lipgloss.Style) func(string) string {
	return func(s string) string {
		if isTTY() {
			return style.Render(s)
		}
		return s
	}
}

var helpTemplateFuncs = template.FuncMap{
	"header": styleFunc(helpHeaderStyle),
	"cmd":    styleFunc(helpCmdStyle),
	"muted":  styleFunc(mutedStyle),
}

const helpTemplate = `{{with .Long}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{header "Usage:"}}
  {{cmd .CommandPath}}{{if .HasAvailableSubCommands}} {{muted "[command]"}}{{end}}{{if .HasAvailableFlags}} {{muted "[flags]"}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}{{header "Commands:"}}
{{range .Commands}}{{if .IsAvailableCommand}}  {{cmd (rpad .Name .NamePadding)}} {{.Short}}
{{end}}{{end}}
{{end}}{{if .HasAvailableLocalFlags}}{{header "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}{{header "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}{{muted "Use"}} {{cmd (printf "%s [command] --help" .CommandPath)}} {{muted "for more information."}}
{{end}}`

// initHelp installs the styled help template on cmd and every subcommand.
func initHelp(cmd *cobra.Command) {
	for name, fn := range helpTemplateFuncs {
		cobra.AddTemplateFunc(name, fn)
	}

	var apply func(*cobra.Command)
	apply = func(c *cobra.Command) {
		c.SetHelpTemplate(helpTemplate)
		for _, sub := range c.Commands() {
			apply(sub)
		}
	}
	apply(cmd)
}
