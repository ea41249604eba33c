package cli

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/pillar/api"
	"github.com/lyraproj/pillar/config"
	"github.com/lyraproj/pillar/grains"
	"github.com/lyraproj/pillar/pillar"
	"github.com/spf13/cobra"
)

var helpTemplate = `Description:
  {{rpad .Long 10}}

Usage:{{if .Runnable}}{{if .HasAvailableFlags}}
  {{appendIfNotPresent .UseLine "[flags]"}}{{else}}{{.UseLine}}{{end}}{{end}}{{if gt .Aliases 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample }}

Examples:
  {{ .Example }}{{end}}{{ if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if .IsAvailableCommand}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{ if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimRightSpace}}{{end}}{{ if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimRightSpace}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsHelpCommand}}
{{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}
`

var (
	logLevel    string
	configPath  string
	urlTemplate string
	withGrains  bool
	grainVars   []string
	grainsFile  string
	renderAs    string
)

// NewCommand creates the pillar Command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pillar <minion-id>",
		Short: `Pillar - Fetch external pillar data for a minion`,
		Long: `Pillar - Fetch external pillar data for a minion from HTTP endpoints.
    Find more information at: https://github.com/lyraproj/pillar`,
		Version: versionString(),
		PreRun:  initialize,
		RunE:    cmdPillar,
		Args:    cobra.ExactArgs(1)}

	flags := cmd.Flags()
	flags.StringVar(&logLevel, `loglevel`, `error`,
		`error/warn/info/debug`)
	flags.StringVar(&configPath, `config`, ``,
		`path to the pillar config file. Overrides <current directory>/`+config.FileName)
	flags.StringVar(&urlTemplate, `url`, ``,
		`url template to fetch pillar data from; bypasses the config file`)
	flags.BoolVar(&withGrains, `with-grains`, false,
		`substitute <name> placeholders in the url with their grain values`)
	flags.StringArrayVar(&grainVars, `grain`, nil,
		`a key=value to add to the grains used for url substitution`)
	flags.StringVar(&grainsFile, `grains-file`, ``,
		`path to a YAML file that contains key-value mappings to become grains`)
	flags.StringVar(&renderAs, `render-as`, ``,
		`yaml/json: Specify the output format of the results`)

	cmd.SetHelpTemplate(helpTemplate)
	return cmd
}

func initialize(_ *cobra.Command, _ []string) {
	hclog.DefaultOptions = &hclog.LoggerOptions{
		Name:  `pillar`,
		Level: hclog.LevelFromString(logLevel),
	}
}

func cmdPillar(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	g, err := createGrains()
	if err != nil {
		return err
	}
	opts := pillar.Options{Logger: hclog.Default(), Grains: g}

	minionID := args[0]
	var result dgo.Map
	if urlTemplate != `` {
		result = pillar.ExtPillar(opts, minionID, nil, urlTemplate, withGrains)
	} else {
		path := configPath
		if path == `` {
			path = config.FileName
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		result = pillar.Assemble(opts, cfg, minionID, nil)
	}

	r := pillar.YAML
	if renderAs != `` {
		r = pillar.RenderName(renderAs)
	}
	pillar.Render(r, result, cmd.OutOrStdout())
	return nil
}

func createGrains() (api.Grains, error) {
	gs := make([]api.Grains, 0, 3)
	if len(grainVars) > 0 {
		m := vf.MutableMap()
		for _, e := range grainVars {
			kv := strings.SplitN(e, `=`, 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf(`unable to parse grain '%s'`, e)
			}
			m.Put(kv[0], kv[1])
		}
		gs = append(gs, grains.Map(m))
	}
	if grainsFile != `` {
		fg, err := grains.YamlFile(grainsFile)
		if err != nil {
			return nil, err
		}
		gs = append(gs, fg)
	}
	gs = append(gs, grains.Environment())
	return grains.Multi(gs...), nil
}
