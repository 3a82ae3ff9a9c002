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

package main

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"

	"github.com/ajroetker/go-gemm/hwy"
)

// supportedTypes are the element types a kernel can be generated for.
var supportedTypes = []string{"float32", "float64", "complex64", "complex128"}

// kernel describes one straight-line micro-kernel: an Mr x Nr register tile
// held in Mr * Nr/Lanes accumulators.
type kernel struct {
	Mr, Nr int
	Type   string
	Name   string
	Accs   []string
	Loads  []load
	Rows   []row
	Stores []store
}

type load struct {
	Name   string
	Offset int
}

type row struct {
	A       string
	Index   int
	Updates []update
}

type update struct {
	Acc, A, B string
}

type store struct {
	Acc    string
	Offset int
}

var titler = cases.Title(language.English)

// newKernel lays out the accumulators, loads and stores of an mr x nr
// kernel of typ.
func newKernel(mr, nr int, typ string) (kernel, error) {
	if mr < 1 || nr < 1 {
		return kernel{}, fmt.Errorf("tile %dx%d: dimensions must be positive", mr, nr)
	}
	if nr%hwy.Lanes != 0 {
		return kernel{}, fmt.Errorf("tile %dx%d: nr must be a multiple of %d lanes", mr, nr, hwy.Lanes)
	}
	if !lo.Contains(supportedTypes, typ) {
		return kernel{}, fmt.Errorf("type %q: want one of %s", typ, strings.Join(supportedTypes, ", "))
	}
	packets := nr / hwy.Lanes
	k := kernel{
		Mr:   mr,
		Nr:   nr,
		Type: typ,
		Name: fmt.Sprintf("kernel%dx%d%s", mr, nr, titler.String(typ)),
	}
	for j := range packets {
		k.Loads = append(k.Loads, load{Name: fmt.Sprintf("b%d", j), Offset: j * hwy.Lanes})
	}
	for i := range mr {
		r := row{A: fmt.Sprintf("a%d", i), Index: i}
		for j := range packets {
			acc := fmt.Sprintf("c%d%d", i, j)
			k.Accs = append(k.Accs, acc)
			r.Updates = append(r.Updates, update{Acc: acc, A: r.A, B: k.Loads[j].Name})
			k.Stores = append(k.Stores, store{Acc: acc, Offset: i*nr + j*hwy.Lanes})
		}
		k.Rows = append(k.Rows, r)
	}
	return k, nil
}

// parseShapes expands flags of the form "4x8:float32,float64" into kernels,
// in flag order and without duplicates.
func parseShapes(specs []string) ([]kernel, error) {
	var kernels []kernel
	for _, spec := range specs {
		tile, types, ok := strings.Cut(spec, ":")
		if !ok || types == "" {
			return nil, fmt.Errorf("shape %q: want MRxNR:type[,type...]", spec)
		}
		ms, ns, ok := strings.Cut(tile, "x")
		if !ok {
			return nil, fmt.Errorf("shape %q: tile must be MRxNR", spec)
		}
		mr, err := strconv.Atoi(ms)
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", spec, err)
		}
		nr, err := strconv.Atoi(ns)
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", spec, err)
		}
		names := lo.Uniq(lo.Map(strings.Split(types, ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		}))
		for _, typ := range names {
			k, err := newKernel(mr, nr, typ)
			if err != nil {
				return nil, fmt.Errorf("shape %q: %w", spec, err)
			}
			kernels = append(kernels, k)
		}
	}
	return lo.UniqBy(kernels, func(k kernel) string { return k.Name }), nil
}

var kernelTemplate = template.Must(template.New("kernels").Parse(`// Code generated by kernelgen. DO NOT EDIT.

package {{.Package}}

import "{{.HwyImport}}"
{{range .Kernels}}{{$t := .Type}}
// {{.Name}} computes a {{.Mr}}x{{.Nr}} tile of {{$t}} with {{len .Accs}} accumulators.
func {{.Name}}(packedA, packedB []{{$t}}, kc int, w []{{$t}}) {
{{- range .Accs}}
	{{.}} := hwy.Zero[{{$t}}]()
{{- end}}
	for p := range kc {
		pa := packedA[p*{{.Mr}} : p*{{.Mr}}+{{.Mr}}]
		pb := packedB[p*{{.Nr}} : p*{{.Nr}}+{{.Nr}}]
{{- range .Loads}}
		{{.Name}} := hwy.Load(pb[{{.Offset}}:])
{{- end}}
{{- range .Rows}}
		{{.A}} := hwy.Set(pa[{{.Index}}])
{{- range .Updates}}
		{{.Acc}} = hwy.MulAdd({{.A}}, {{.B}}, {{.Acc}})
{{- end}}
{{- end}}
	}
{{- range .Stores}}
	hwy.Store({{.Acc}}, w[{{.Offset}}:])
{{- end}}
}
{{end}}`))

// render executes the kernel template and formats the result.
func render(pkg, hwyImport string, kernels []kernel) ([]byte, error) {
	var buf bytes.Buffer
	err := kernelTemplate.Execute(&buf, struct {
		Package   string
		HwyImport string
		Kernels   []kernel
	}{pkg, hwyImport, kernels})
	if err != nil {
		return nil, err
	}
	out, err := imports.Process("kernel_gen.go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting generated kernels: %w", err)
	}
	return out, nil
}
