package journey

import (
	"fmt"
	"sort"

	"github.com/san-kum/qjourney/internal/stage"
)

// StepSpec names a step and the panel it shows.
type StepSpec struct {
	Title string `yaml:"title" json:"title"`
	Panel string `yaml:"panel" json:"panel"`
}

// DefaultSteps is the seven-step journey from plaintext back to plaintext.
func DefaultSteps() []StepSpec {
	return []StepSpec{
		{Title: "Original Message", Panel: PanelMessage},
		{Title: "Binary Conversion", Panel: PanelBinary},
		{Title: "Huffman Compression", Panel: PanelHuffman},
		{Title: "Quantum Encryption", Panel: PanelQuantum},
		{Title: "Network Transmission", Panel: PanelTransmission},
		{Title: "Quantum Decryption", Panel: PanelDecryption},
		{Title: "Final Message", Panel: PanelFinal},
	}
}

type Registry struct {
	panels map[string]Panel
}

func NewRegistry() *Registry {
	r := &Registry{panels: make(map[string]Panel)}
	for _, p := range builtinPanels() {
		r.panels[p.Name()] = p
	}
	return r
}

// Register adds or replaces a panel.
func (r *Registry) Register(p Panel) {
	r.panels[p.Name()] = p
}

func (r *Registry) GetPanel(name string) (Panel, error) {
	p, ok := r.panels[name]
	if !ok {
		return nil, fmt.Errorf("unknown panel: %s", name)
	}
	return p, nil
}

func (r *Registry) ListPanels() []string {
	names := make([]string, 0, len(r.panels))
	for name := range r.panels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultTables returns every registered panel's own stage table, skipping
// static panels.
func (r *Registry) DefaultTables() map[string]stage.Table {
	tables := make(map[string]stage.Table)
	for name, p := range r.panels {
		if t := p.DefaultTable(); len(t) > 0 {
			tables[name] = t
		}
	}
	return tables
}

// DefaultTables is NewRegistry().DefaultTables().
func DefaultTables() map[string]stage.Table {
	return NewRegistry().DefaultTables()
}
