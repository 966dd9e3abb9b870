package outputs

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/ohowland/dfl_launcher/internal/pkg/algo"
	"github.com/ohowland/dfl_launcher/internal/pkg/network"
)

// diagramTable is the reactive capability of one device. Without points the
// diagram is the rectangle [pMin, pMax] x [qMin, qMax].
type diagramTable struct {
	id     string
	points []network.ReactiveCurvePoint
	pMin   float64
	pMax   float64
	qMin   float64
	qMax   float64
}

func newDiagramTable(id string, points []network.ReactiveCurvePoint, pMin, pMax, qMin, qMax float64) diagramTable {
	sorted := make([]network.ReactiveCurvePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].P < sorted[j].P })
	return diagramTable{id: id, points: sorted, pMin: pMin, pMax: pMax, qMin: qMin, qMax: qMax}
}

func vscTable(def algo.VSCDefinition) diagramTable {
	return newDiagramTable(def.ID, def.Points, def.PMin, def.PMax, def.QMin, def.QMax)
}

func lccTable(converterID string, powerFactor, pMax float64) diagramTable {
	qMax := ComputeQmax(powerFactor, pMax)
	return newDiagramTable(converterID, nil, -pMax, pMax, -qMax, qMax)
}

// content renders the table in the simulator's text table format. The file
// must start with "#1".
func (d diagramTable) content() []byte {
	var b strings.Builder
	b.WriteString("#1")
	d.writeTable(&b, true)
	d.writeTable(&b, false)
	return []byte(b.String())
}

func (d diagramTable) writeTable(b *strings.Builder, min bool) {
	suffix := DiagramMaxTableSuffix
	if min {
		suffix = DiagramMinTableSuffix
	}
	rows := len(d.points)
	if rows == 0 {
		rows = 2
	}
	fmt.Fprintf(b, "\ndouble %s%s(%d,2)", UUID(d.id), suffix, rows)

	if len(d.points) == 0 {
		q := d.qMax
		if min {
			q = d.qMin
		}
		fmt.Fprintf(b, "\n%s %s", formatTable(d.pMin/pu), formatTable(q/pu))
		fmt.Fprintf(b, "\n%s %s", formatTable(d.pMax/pu), formatTable(q/pu))
		return
	}
	for _, point := range d.points {
		q := point.QMax
		if min {
			q = point.QMin
		}
		fmt.Fprintf(b, "\n%s %s", formatTable(point.P/pu), formatTable(q/pu))
	}
}

func formatTable(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// WriteDiagrams writes one diagram file per generator using a diagram, per
// HVDC converter of a diagram model lying in the main component and per VSC
// station representing a multiply regulated bus. It returns the number of
// files written.
func (w *Writer) WriteDiagrams(ctx context.Context, generators []algo.GeneratorDefinition, hvdc algo.HVDCLineDefinitions) (int, error) {
	tables := make([]diagramTable, 0)
	for _, g := range generators {
		if !g.Model.IsUsingDiagram() {
			continue
		}
		tables = append(tables, newDiagramTable(g.ID, g.Points, g.PMin, g.PMax, g.QMin, g.QMax))
	}

	for _, id := range sortedKeys(hvdc.Lines) {
		def := hvdc.Lines[id]
		if !def.HasDiagramModel() {
			continue
		}
		if def.Position != algo.SecondInMainComponent {
			tables = append(tables, converterTable(def, 1))
		}
		if def.Position != algo.FirstInMainComponent {
			tables = append(tables, converterTable(def, 2))
		}
	}

	for _, bus := range sortedKeys(hvdc.VSCBusVSCDefinitions) {
		tables = append(tables, vscTable(hvdc.VSCBusVSCDefinitions[bus]))
	}

	written := make(map[string]bool)
	for _, table := range tables {
		name := DiagramFilename(table.id)
		if written[name] {
			continue
		}
		if err := w.upload(ctx, joinURL(w.DiagramDir(), name), table.content()); err != nil {
			return len(written), err
		}
		written[name] = true
	}
	log.Printf("[Outputs] %d diagrams written to %s", len(written), w.DiagramDir())
	return len(written), nil
}

// converterTable returns the diagram of converter 1 or 2 of def.
func converterTable(def algo.HVDCDefinition, n int) diagramTable {
	if n == 1 {
		if def.VSCDefinition1 != nil {
			return vscTable(*def.VSCDefinition1)
		}
		return lccTable(def.Converter1ID, def.PowerFactors[0], def.PMax)
	}
	if def.VSCDefinition2 != nil {
		return vscTable(*def.VSCDefinition2)
	}
	return lccTable(def.Converter2ID, def.PowerFactors[1], def.PMax)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
