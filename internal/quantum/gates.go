// Package quantum holds the narrative gate catalog of the encryption and
// decryption panels. Nothing here computes amplitudes: a qubit is a phase
// angle and two flags, replayed deterministically from the gate index.
package quantum

import "fmt"

// Gate describes one step of the encryption circuit.
type Gate struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Effect      string `json:"effect"`
	Status      string `json:"status"`
}

// Kind groups gates by how they animate qubits.
type Kind int

const (
	KindNone Kind = iota
	KindHadamard
	KindCNOT
	KindPhase
	KindPauli
)

func (k Kind) String() string {
	switch k {
	case KindHadamard:
		return "hadamard"
	case KindCNOT:
		return "cnot"
	case KindPhase:
		return "phase"
	case KindPauli:
		return "pauli"
	}
	return "none"
}

var gates = []Gate{
	{
		Key:         "hadamard",
		Name:        "Hadamard Gate",
		Symbol:      "H",
		Description: "Creates superposition - like flipping a quantum coin",
		Effect:      "Puts qubit in superposition of 0 and 1",
		Status:      "Creating superposition...",
	},
	{
		Key:         "cnot",
		Name:        "CNOT Gate",
		Symbol:      "⊕",
		Description: "Entangles qubits - what happens to one affects the other",
		Effect:      "Creates quantum entanglement between qubits",
		Status:      "Entangling qubits...",
	},
	{
		Key:         "phase",
		Name:        "Phase Gate",
		Symbol:      "S",
		Description: "Rotates the qubit's state on the Bloch sphere",
		Effect:      "Applies phase rotation to the qubit",
		Status:      "Rotating on Bloch sphere...",
	},
	{
		Key:         "pauli-x",
		Name:        "Pauli-X Gate",
		Symbol:      "X",
		Description: "Bit flip - rotates qubit around X-axis",
		Effect:      "Flips qubit from |0⟩ to |1⟩ or vice versa",
		Status:      "Applying Pauli rotation...",
	},
	{
		Key:         "pauli-y",
		Name:        "Pauli-Y Gate",
		Symbol:      "Y",
		Description: "Complex rotation around Y-axis",
		Effect:      "Applies Y rotation with phase",
		Status:      "Applying Pauli rotation...",
	},
	{
		Key:         "pauli-z",
		Name:        "Pauli-Z Gate",
		Symbol:      "Z",
		Description: "Phase flip - rotates around Z-axis",
		Effect:      "Changes phase of |1⟩ state",
		Status:      "Applying Pauli rotation...",
	},
}

var inverseDescriptions = map[string]string{
	"pauli-z":  "Undoing phase flip",
	"pauli-y":  "Reversing Y rotation",
	"pauli-x":  "Undoing bit flip",
	"phase":    "Reversing phase rotation",
	"cnot":     "Breaking entanglement",
	"hadamard": "Collapsing superposition",
}

// Gates returns the encryption circuit in application order.
func Gates() []Gate {
	return append([]Gate(nil), gates...)
}

// Inverse returns the decryption circuit: every gate's adjoint in reverse
// order.
func Inverse() []Gate {
	out := make([]Gate, 0, len(gates))
	for i := len(gates) - 1; i >= 0; i-- {
		g := gates[i]
		name := "Inverse " + trimGate(g.Name)
		out = append(out, Gate{
			Key:         "inverse-" + g.Key,
			Name:        name,
			Symbol:      g.Symbol + "†",
			Description: inverseDescriptions[g.Key],
			Effect:      g.Effect,
			Status:      "Reversing quantum operations...",
		})
	}
	return out
}

// Lookup finds a gate of either circuit by key.
func Lookup(key string) (Gate, int, bool) {
	for i, g := range gates {
		if g.Key == key {
			return g, i, true
		}
	}
	for i, g := range Inverse() {
		if g.Key == key {
			return g, i, true
		}
	}
	return Gate{}, -1, false
}

// KindOf classifies the encryption gate at index i.
func KindOf(i int) Kind {
	switch {
	case i == 0:
		return KindHadamard
	case i == 1:
		return KindCNOT
	case i == 2:
		return KindPhase
	case i >= 3 && i < len(gates):
		return KindPauli
	}
	return KindNone
}

// Qubit is the displayed state of one wire.
type Qubit struct {
	ID        int  `json:"id"`
	Phase     int  `json:"phase"`
	Entangled bool `json:"entangled"`
	Active    bool `json:"active"`
}

func (q Qubit) String() string {
	flags := ""
	if q.Active {
		flags += " active"
	}
	if q.Entangled {
		flags += " entangled"
	}
	return fmt.Sprintf("q%d phase=%d°%s", q.ID, q.Phase, flags)
}

// Register is the number of qubits on the circuit.
const Register = 3

// States replays gates 0..gate from the all-idle register. A negative gate
// returns the initial register.
func States(gate int) []Qubit {
	qs := make([]Qubit, Register)
	for i := range qs {
		qs[i].ID = i
	}
	if gate >= len(gates) {
		gate = len(gates) - 1
	}
	for g := 0; g <= gate; g++ {
		apply(qs, g)
	}
	return qs
}

func apply(qs []Qubit, gate int) {
	for i := range qs {
		q := &qs[i]
		switch KindOf(gate) {
		case KindHadamard:
			q.Active = i == 0
			if i == 0 {
				q.Phase = 45
			}
		case KindCNOT:
			q.Entangled = i < 2
			q.Active = i < 2
		case KindPhase:
			if i == 1 {
				q.Phase += 90
			}
			q.Active = i == 1
		case KindPauli:
			q.Phase += 30
			q.Active = i == gate-3
		}
	}
}

func trimGate(name string) string {
	const suffix = " Gate"
	if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
		return name[:len(name)-len(suffix)]
	}
	return name
}
