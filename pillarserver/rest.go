package main

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo"
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/pillar/config"
	"github.com/lyraproj/pillar/pillar"
	"github.com/spf13/cobra"
)

func main() {
	cmd := newCommand()
	err := cmd.Execute()
	if err != nil {
		fmt.Println(cmd.OutOrStderr(), err)
		os.Exit(1)
	}
}

var (
	logLevel   string
	configPath string
	port       int
)

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "server",
		Short:  `Server - Start a pillar REST server`,
		Long:   "Server - Start a REST server that assembles external pillar data for minions.\n  Responds to minion lookups under the /pillar endpoint",
		PreRun: initialize,
		RunE:   startServer,
		Args:   cobra.NoArgs}

	flags := cmd.Flags()
	flags.StringVar(&logLevel, `loglevel`, `error`, `error/warn/info/debug`)
	flags.StringVar(&configPath, `config`, ``, `path to the pillar config file. Overrides <current directory>/`+config.FileName)
	flags.IntVar(&port, `port`, 8080, `port number to listen to`)
	return cmd
}

func initialize(_ *cobra.Command, _ []string) {
	hclog.DefaultOptions = &hclog.LoggerOptions{
		Name:  `pillar`,
		Level: hclog.LevelFromString(logLevel),
	}
}

func startServer(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	var cfg *config.Config
	if configPath != `` {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	e := echo.New()
	e.Logger.SetOutput(cmd.OutOrStdout())
	opts := pillar.Options{Logger: hclog.Default()}

	doPillar := func(c echo.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if er, ok := r.(error); ok {
					err = c.JSON(http.StatusInternalServerError, map[string]string{`message`: er.Error()})
				} else {
					panic(r)
				}
			}
		}()

		minionID := c.Param(`minion`)
		var result dgo.Map
		if u := c.QueryParam(`url`); u != `` {
			withGrains, _ := strconv.ParseBool(c.QueryParam(`with_grains`))
			result = pillar.ExtPillar(opts, minionID, nil, u, withGrains)
		} else if cfg != nil {
			result = pillar.Assemble(opts, cfg, minionID, nil)
		} else {
			return c.JSON(http.StatusBadRequest, map[string]string{`message`: `no url parameter given and no config file loaded`})
		}

		out := bytes.Buffer{}
		pillar.Render(pillar.JSON, result, &out)
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, out.Bytes())
	}

	e.GET(`/pillar/:minion`, doPillar)
	e.Logger.Fatal(e.Start(`:` + strconv.Itoa(port)))
	return nil
}
