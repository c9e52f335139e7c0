package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ben-juodvalkis/musical-perception/pkg/cli"
)

// outputFlags are the result formatting flags shared by the commands
// that produce structured results.
type outputFlags struct {
	format string
	file   string
	query  string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "output format: yaml, json, or raw (default: terminal summary)")
	cmd.Flags().StringVarP(&f.file, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().StringVar(&f.query, "query", "", "jq expression applied to the result")
}

// emit writes v according to the flags. Without a format, file, or
// query, render's terminal summary is printed instead; a query with no
// explicit format defaults to JSON since that is what jq consumers
// expect.
func (f *outputFlags) emit(v any, render func() string) error {
	q, err := cli.ParseQuery(f.query)
	if err != nil {
		return err
	}

	if f.format == "" && f.file == "" && q == nil && render != nil {
		fmt.Println(render())
		return nil
	}

	out := v
	if q != nil {
		results, err := q.Apply(v)
		if err != nil {
			return err
		}
		if len(results) == 1 {
			out = results[0]
		} else {
			out = results
		}
	}

	format := cli.OutputFormat(f.format)
	if f.format == "" && q != nil {
		format = cli.FormatJSON
	}
	return cli.Output(out, cli.OutputOptions{Format: format, File: f.file})
}
