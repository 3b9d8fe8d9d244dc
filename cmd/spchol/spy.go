// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/katalvlaran/spchol/solver"
)

// spySide is the edge length of the square spy plot.
const spySide = 6 * vg.Inch

// spyPoints collects (col, -row) for every nonzero of the factor, so row 0
// is drawn at the top.
func spyPoints(f *solver.Factor) plotter.XYs {
	var pts plotter.XYs
	lval := f.L()
	for i := 0; i < f.Len(); i++ {
		nd := f.Node(i)
		tn := nd.Tree()
		for j := 0; j < nd.N(); j++ {
			for k := j; k < nd.M(); k++ {
				if lval[nd.Offset()+j*nd.LD()+k] == 0 {
					continue
				}
				pts = append(pts, plotter.XY{X: float64(tn.FirstCol() + j), Y: -float64(tn.Rows[k])})
			}
		}
	}

	return pts
}

// writeSpy renders the sparsity pattern of the factor to a PNG at path.
func writeSpy(path string, f *solver.Factor) error {
	pts := spyPoints(f)
	p := plot.New()
	p.Title.Text = fmt.Sprintf("L: %d nonzeros", len(pts))
	p.X.Label.Text = "column"
	p.Y.Label.Text = "-row"

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("spchol: spy plot: %w", err)
	}
	sc.GlyphStyle.Radius = vg.Points(1)
	p.Add(sc)

	if err := p.Save(spySide, spySide, path); err != nil {
		return fmt.Errorf("spchol: save spy plot: %w", err)
	}

	return nil
}
