package main

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"balancechart/models"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Decode a chart-data payload and summarize it",
		Long: `check reads a chart-data payload from a file, or from stdin when the file is "-",
and prints the series it decodes to, or the decode error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return check(cmd.OutOrStdout(), payload)
		},
	}
}

func readPayload(path string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.Wrap(err, "read payload")
	}
	return string(b), nil
}

func check(w io.Writer, payload string) error {
	ds, err := models.Decode(payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d series, %d points\n", len(ds.Series), ds.NumPoints())
	if len(ds.Series) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"series", "label", "points", "last"})
	for i, s := range ds.Series {
		last := "-"
		if n := len(s.Points); n > 0 {
			last = fmt.Sprintf("%g", s.Points[n-1].Y)
		}
		table.Append([]string{s.Name(i), s.Label, fmt.Sprint(len(s.Points)), last})
	}
	table.Render()
	return nil
}
