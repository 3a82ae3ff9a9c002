// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command kernelgen generates the straight-line GEMM micro-kernels of
// package matmul.
//
// Usage:
//
//	kernelgen gen --out kernel_gen.go --shapes 4x8:float32,float64 --shapes 4x4:complex64,complex128
//
// Or via go:generate in hwy/contrib/matmul/kernel.go. Each shape MRxNR
// yields one kernel per listed type, named kernel<MR>x<NR><Type>, that keeps
// the MR x NR tile in MR*NR/Lanes vector accumulators.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "kernelgen",
		Short:        "Generate GEMM micro-kernels",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each generated kernel")
	root.AddCommand(newGenCmd())
	return root
}

type genOptions struct {
	out       string
	pkg       string
	hwyImport string
	shapes    []string
}

func addGenFlags(fs *pflag.FlagSet, o *genOptions) {
	fs.StringVarP(&o.out, "out", "o", "kernel_gen.go", "output file, or - for stdout")
	fs.StringVar(&o.pkg, "package", "matmul", "package clause of the generated file")
	fs.StringVar(&o.hwyImport, "hwy-import", "github.com/ajroetker/go-gemm/hwy", "import path of the hwy package")
	fs.StringArrayVar(&o.shapes, "shapes", []string{"4x8:float32,float64", "4x4:complex64,complex128"},
		"register tile and types as MRxNR:type[,type...]; repeatable")
}

func newGenCmd() *cobra.Command {
	var o genOptions
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write the micro-kernel file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kernels, err := parseShapes(o.shapes)
			if err != nil {
				return err
			}
			for _, k := range kernels {
				slog.Debug("kernel", "name", k.Name, "mr", k.Mr, "nr", k.Nr, "accumulators", len(k.Accs))
			}
			src, err := render(o.pkg, o.hwyImport, kernels)
			if err != nil {
				return err
			}
			if o.out == "-" {
				_, err = cmd.OutOrStdout().Write(src)
				return err
			}
			if err := os.WriteFile(o.out, src, 0o644); err != nil {
				return err
			}
			slog.Info("generated", "file", o.out, "kernels", len(kernels))
			return nil
		},
	}
	addGenFlags(cmd.Flags(), &o)
	return cmd
}
