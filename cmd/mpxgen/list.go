package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dudk/mpxgen/mpx"
	"github.com/dudk/mpxgen/resample"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show supported input formats and resampling qualities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Input formats:\n %v\n", strings.Join(mpx.Formats(), " "))
			fmt.Fprintf(out, "Resampling qualities:\n %v\n", strings.Join(resample.Qualities(), " "))
			return nil
		},
	}
}
