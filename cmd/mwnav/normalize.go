package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/mwnav/mediawikinav/internal/core/template"
)

func newNormalizeCmd(s *session) *cobra.Command {
	var (
		output     string
		inPlace    bool
		transforms []string
		derived    []string
		noSplit    bool
	)

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize the templates of a local file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				in  []byte
				err error
			)
			if len(args) == 0 || args[0] == "-" {
				in, err = io.ReadAll(cmd.InOrStdin())
			} else {
				in, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			nc := s.cfg.Normalize
			if cmd.Flags().Changed("transform") {
				nc.Transforms = transforms
			}
			if cmd.Flags().Changed("derived") {
				nc.Derived = derived
			}
			if noSplit {
				nc.SplitParams = false
			}

			out := template.Render(string(in), nc.Pipeline(s.factory, s.log), nc.RenderOptions())
			s.log.Info("Text normalized", "in_bytes", len(in), "out_bytes", len(out))

			if inPlace {
				if len(args) == 0 || args[0] == "-" {
					return fmt.Errorf("--in-place needs a file argument")
				}
				output = args[0]
			}
			if output == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			return atomic.WriteFile(output, bytes.NewReader([]byte(out)))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "Rewrite the input file")
	cmd.Flags().StringSliceVarP(&transforms, "transform", "t", nil, "Transforms to apply, in order")
	cmd.Flags().StringSliceVarP(&derived, "derived", "d", nil, "Derived fields to add, in order")
	cmd.Flags().BoolVar(&noSplit, "raw-bodies", false, "Do not split template parameters")
	return cmd
}
