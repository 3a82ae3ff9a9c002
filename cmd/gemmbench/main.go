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

// Command gemmbench times the dense kernels on random square matrices and
// reports the best of several runs in GFLOP/s.
//
// Usage:
//
//	gemmbench gemm --size 1024 --type float32 --workers 8
//	gemmbench trmm --size 512 --check
//	gemmbench tridiag --size 300 --type complex128
//	gemmbench bidiag --size 300 --check
//
// With --check the result is verified against gonum (float64 and complex128
// for products, float64 for the reductions).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/matmul"
)

var scalarTypes = []string{"float32", "float64", "complex64", "complex128"}

type benchOptions struct {
	size    int
	typ     string
	workers int
	repeat  int
	check   bool
	verbose bool
}

func addBenchFlags(fs *pflag.FlagSet, o *benchOptions) {
	fs.IntVarP(&o.size, "size", "n", 256, "matrix order")
	fs.StringVarP(&o.typ, "type", "t", "float64", "element type: float32, float64, complex64 or complex128")
	fs.IntVarP(&o.workers, "workers", "w", 0, "parallel GEMM workers (0 for GOMAXPROCS, 1 for sequential)")
	fs.IntVarP(&o.repeat, "repeat", "r", 3, "timed runs; the best is reported")
	fs.BoolVar(&o.check, "check", false, "verify the result against gonum")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log configuration and per-run timings")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &benchOptions{}
	root := &cobra.Command{
		Use:          "gemmbench",
		Short:        "Benchmark dense products and Householder reductions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if o.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return o.apply()
		},
	}
	addBenchFlags(root.PersistentFlags(), o)

	for _, b := range []struct {
		name, short string
		run         func(*benchOptions, *cobra.Command) error
	}{
		{"gemm", "C += A*B", runGemm},
		{"trmm", "C += tri(A)*B with lower non-unit A", runTrmm},
		{"tridiag", "tridiagonalize a self-adjoint matrix", runTridiag},
		{"bidiag", "bidiagonalize a square matrix", runBidiag},
	} {
		run := b.run
		root.AddCommand(&cobra.Command{
			Use:   b.name,
			Short: b.short,
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return run(o, cmd) },
		})
	}
	return root
}

// apply validates the flags and installs the worker count as the
// process-wide matmul configuration.
func (o *benchOptions) apply() error {
	if o.size < 1 {
		return fmt.Errorf("--size must be positive, got %d", o.size)
	}
	if o.repeat < 1 {
		return fmt.Errorf("--repeat must be positive, got %d", o.repeat)
	}
	if !slices.Contains(scalarTypes, o.typ) {
		return fmt.Errorf("--type %q: want one of %v", o.typ, scalarTypes)
	}
	cfg := matmul.DefaultConfig()
	if o.workers > 0 {
		cfg.MaxWorkers = o.workers
	}
	if err := matmul.SetConfig(cfg); err != nil {
		return err
	}
	slog.Debug("config", "simd", hwy.CurrentName(), "fma", hwy.HasFMA(), "l1", cfg.L1CacheBytes, "l2", cfg.L2CacheBytes,
		"l3", cfg.L3CacheBytes, "workers", cfg.MaxWorkers)
	return nil
}

// byType runs the variant of a benchmark matching --type.
func byType(typ string, f32, f64, c64, c128 func() error) error {
	switch typ {
	case "float32":
		return f32()
	case "float64":
		return f64()
	case "complex64":
		return c64()
	default:
		return c128()
	}
}
