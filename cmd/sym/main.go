// Command sym parses SYM documents and converts between formats.
//
// Usage:
//
//	sym config.sym             Parse a SYM file, print SYM
//	sym --json config.sym      Parse a SYM file, print JSON
//	sym --from-json data.json  Convert JSON to SYM
//	sym -e '{ :a 1 }'          Parse an inline expression
//	cat f.yaml | sym --from-yaml -
//
// Exit status is 0 on success and 1 on any parse, resolve, import or
// I/O error.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Konfuzian/symbolic-language/sym"
)

func main() {
	app := &cli.App{
		Name:      "sym",
		Usage:     "parser for the SYM data format",
		ArgsUsage: "<file.sym | ->",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output as JSON",
			},
			&cli.BoolFlag{
				Name:  "from-json",
				Usage: "input is JSON, convert to a SYM value",
			},
			&cli.BoolFlag{
				Name:  "from-yaml",
				Usage: "input is YAML, convert to a SYM value",
			},
			&cli.BoolFlag{
				Name:  "from-toml",
				Usage: "input is TOML, convert to a SYM value",
			},
			&cli.StringFlag{
				Name:    "expr",
				Aliases: []string{"e"},
				Usage:   "parse an inline SYM expression instead of a file",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	input, origin, err := readInput(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var value *sym.Value
	switch {
	case c.Bool("from-json"):
		value, err = sym.FromJSON(input)
	case c.Bool("from-yaml"):
		value, err = sym.FromYAML(input)
	case c.Bool("from-toml"):
		value, err = sym.FromTOML(input)
	default:
		value, err = sym.ParseDocument(input, origin, nil)
	}
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("json") {
		os.Stdout.Write(sym.MarshalJSON(value, "  "))
		fmt.Println()
	} else {
		fmt.Println(sym.Emit(value))
	}
	return nil
}

func readInput(c *cli.Context) ([]byte, string, error) {
	if expr := c.String("expr"); expr != "" {
		return []byte(expr), "<expr>", nil
	}

	if c.NArg() < 1 {
		cli.ShowAppHelp(c)
		return nil, "", fmt.Errorf("error: no input specified")
	}

	path := c.Args().First()
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("error reading stdin: %w", err)
		}
		return data, "<stdin>", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("error reading file %q: %w", path, err)
	}
	return data, path, nil
}
