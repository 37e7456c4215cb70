// Package hist computes measurement outcome probabilities for a subset of
// qubits and renders them as a terminal bar chart.
package hist

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ReadableQubits is the largest register whose 2^n outcomes still render as
// a legible chart.
const ReadableQubits = 5

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

// Crowded reports whether a histogram over n qubits exceeds ReadableQubits.
func Crowded(n int) bool {
	return n > ReadableQubits
}

// Marginals returns the probability of every outcome of qubits. Outcome
// keys are bit strings whose character j is the value of qubits[j].
func Marginals(psi []complex128, qubits []uint) map[string]float64 {
	k := len(qubits)
	sums := make([]float64, 1<<k)
	for i, a := range psi {
		o := 0
		for pos, q := range qubits {
			if i&(1<<q) != 0 {
				o |= 1 << pos
			}
		}
		sums[o] += real(a)*real(a) + imag(a)*imag(a)
	}

	out := make(map[string]float64, len(sums))
	for o, p := range sums {
		out[outcome(o, k)] = p
	}
	return out
}

func outcome(o, k int) string {
	b := make([]byte, k)
	for pos := range b {
		b[pos] = '0' + byte(o>>pos&1)
	}
	return string(b)
}

// Render writes a bar chart of probs to w with bars up to width cells.
func Render(w io.Writer, probs map[string]float64, width int) error {
	if width <= 0 {
		width = 40
	}
	keys := make([]string, 0, len(probs))
	for k := range probs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Measurement probabilities"))
	for _, k := range keys {
		p := probs[k]
		cells := 0
		if !math.IsNaN(p) {
			cells = int(math.Round(min(max(p, 0), 1) * float64(width)))
		}
		bar := barStyle.Render(strings.Repeat("█", cells)) + dimStyle.Render(strings.Repeat("·", width-cells))
		fmt.Fprintf(&sb, "\n%s %s %6.2f%%", labelStyle.Render(k), bar, 100*p)
	}

	_, err := fmt.Fprintln(w, frameStyle.Render(sb.String()))
	return err
}
