// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gencmd provides generate subcommand.
package gencmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/compiledb/buildlog"
	"go.chromium.org/infra/build/compiledb/compdb"
	"go.chromium.org/infra/build/compiledb/config"
	"go.chromium.org/infra/build/compiledb/generate"
	"go.chromium.org/infra/build/compiledb/ui"
)

const usage = `generate compilation database from build log.

Parses the build log of make (or other make-like build tools),
and updates compile_commands.json with compile commands in the log.

 $ make -Bnwk | compiledb generate
 $ compiledb generate -i build.log.gz -o out/compile_commands.json

The build log should have "Entering directory" messages (make -w)
to track the directory where each command ran.

Entries in existing compile_commands.json are kept unless -overwrite,
and replaced by new entries for the same file.

Compiler recognition can be configured in .compiledb.toml in the
project directory, and overridden by $COMPILEDB_* env vars, e.g.

 compilers = ["gcc", "clang", "xlc"]
 wrappers = ["ccache"]
 source_exts = [".c", ".cc"]
 compile_flags = ["-c"]
 cosmetic_flags = ["-fcolor-diagnostics"]
 exclude = ["third_party/"]
`

// Cmd returns the Command for the `generate` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "generate [flags]",
		ShortDesc: "generate compilation database from build log",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	input        string
	output       string
	projectDir   string
	configFile   string
	exclude      excludeFlag
	verbose      bool
	overwrite    bool
	strict       bool
	commandStyle bool
	fullPath     bool
	pretty       bool
}

type excludeFlag []string

func (f *excludeFlag) String() string {
	return strings.Join(*f, ",")
}

func (f *excludeFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func (c *run) init() {
	c.Flags.StringVar(&c.input, "i", "-", `build log to parse. "-" for stdin. may be gzip or zstd compressed`)
	c.Flags.StringVar(&c.output, "o", "compile_commands.json", `output compilation database. "-" for stdout. gzip compressed if it ends with ".gz"`)
	c.Flags.StringVar(&c.projectDir, "d", "", "directory where the build ran. current directory if empty")
	c.Flags.StringVar(&c.configFile, "config", "", "config file. "+config.DefaultFile+" in the project directory if empty")
	c.Flags.Var(&c.exclude, "e", "regexp of source files to exclude. can be repeated")
	c.Flags.BoolVar(&c.verbose, "v", false, "verbose mode")
	c.Flags.BoolVar(&c.overwrite, "overwrite", false, "overwrite compilation database instead of updating it")
	c.Flags.BoolVar(&c.strict, "strict", false, "drop entries for source files that don't exist")
	c.Flags.BoolVar(&c.commandStyle, "command_style", false, `write "command" instead of "arguments"`)
	c.Flags.BoolVar(&c.fullPath, "full_path", false, "write absolute path of source files")
	c.Flags.BoolVar(&c.pretty, "pretty", true, "indent output")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
			return 2
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if len(args) != 0 {
		return fmt.Errorf("position arguments not expected: %q: %w", args, flag.ErrHelp)
	}
	if c.verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.SetDefault(log.With("run", uuid.New().String()))

	projectDir := c.projectDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		projectDir = wd
	}
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("%w: %w", buildlog.ErrProjectDir, err)
	}

	configFile := c.configFile
	if configFile == "" {
		configFile = filepath.Join(projectDir, config.DefaultFile)
	} else if _, err := os.Stat(configFile); err != nil {
		return err
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log.Debugf("config %s: %+v", configFile, cfg)

	in, err := openInput(c.input)
	if err != nil {
		return err
	}
	defer in.Close()

	inputName := c.input
	if inputName == "-" {
		inputName = "stdin"
	}
	u := ui.Default
	if c.output == compdb.Stdout && ui.IsTerminal() {
		// keep stdout for the database.
		u = &ui.LogUI{}
	}
	return generate.Run(ctx, in, generate.Options{
		InputName:    inputName,
		Output:       c.output,
		ProjectDir:   projectDir,
		Exclude:      append(cfg.Exclude, c.exclude...),
		Verbose:      c.verbose,
		Overwrite:    c.overwrite,
		Strict:       c.strict,
		CommandStyle: c.commandStyle,
		FullPath:     c.fullPath,
		Pretty:       c.pretty,
		Policy:       cfg.Policy(),
		UI:           u,
	})
}
