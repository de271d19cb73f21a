// Package main is the Seisho CLI entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/hyperjump/seisho/internal/config"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/seisho/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "seisho",
		Usage:   "Scripture corpus search and word statistics",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path",
				Value:   defaultConfigPath,
				EnvVars: []string{"SEISHO_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "Start the HTTP server",
				Action: serverCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "preload",
						Usage: "load every volume before accepting requests",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcpCommand,
			},
			{
				Name:      "search",
				Usage:     "Find verses containing a phrase",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "scope",
						Usage: "all, book or selected",
						Value: "all",
					},
					&cli.StringFlag{
						Name:  "volume",
						Usage: "restrict the search to one volume",
					},
					&cli.StringSliceFlag{
						Name:    "book",
						Aliases: []string{"b"},
						Usage:   "book name for the book and selected scopes (repeatable)",
					},
					outputFlag(),
					serverFlag(),
				},
			},
			{
				Name:      "proximity",
				Usage:     "Find verses where two words occur near each other",
				ArgsUsage: "<term1> <term2>",
				Action:    proximityCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "distance",
						Aliases: []string{"d"},
						Usage:   "maximum distance in words (default from config)",
					},
					outputFlag(),
					serverFlag(),
				},
			},
			{
				Name:      "frequency",
				Usage:     "Count words per book, or per chapter of one book",
				ArgsUsage: "<term>...",
				Action:    frequencyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "book",
						Usage: "count per chapter of this book",
					},
					outputFlag(),
					serverFlag(),
				},
			},
			{
				Name:   "import",
				Usage:  "Import volume files into the corpus database; a full import removes volumes no longer configured",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "re-import volumes whose content is unchanged",
					},
					&cli.StringSliceFlag{
						Name:  "volume",
						Usage: "import only this volume (repeatable)",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show volume load status",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "load",
						Usage: "load every volume before reporting",
					},
					outputFlag(),
					serverFlag(),
				},
			},
			{
				Name:      "init",
				Usage:     "Write a default config file",
				ArgsUsage: "[path]",
				Action:    initCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "overwrite an existing file",
					},
				},
			},
			{
				Name:  "version",
				Usage: "Show version",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "seisho version %s\n", version)
					return nil
				},
			},
		},
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output format: text, compact (one line per hit) or json",
		Value:   "text",
	}
}

func serverFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "server",
		Usage: "query a running server at this URL instead of loading the corpus locally",
	}
}
