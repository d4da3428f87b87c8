package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

// TripleWriter receives the statements of one subject at a time.
type TripleWriter interface {
	WriteSubject(subject Term, triples []Triple) error
	Flush() error
}

// NewWriter returns the writer for format.
func NewWriter(w io.Writer, format Format, prefixes map[string]string) (TripleWriter, error) {
	switch format {
	case FormatTurtle:
		return NewTurtleWriter(w, prefixes), nil
	case FormatNTriples:
		return NewNTriplesWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// localName is the subset of Turtle local names written in prefixed form.
var localName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	w        *bufio.Writer
	prefixes map[string]string
	started  bool
}

// NewTurtleWriter creates a Turtle writer. prefixes are added to the
// standard rdf, rdfs, owl, xsd and owlgraph prefixes.
func NewTurtleWriter(w io.Writer, prefixes map[string]string) *TurtleWriter {
	all := defaultPrefixes()
	for k, v := range prefixes {
		all[k] = v
	}
	return &TurtleWriter{w: bufio.NewWriter(w), prefixes: all}
}

func (tw *TurtleWriter) writePrefixes() {
	keys := make([]string, 0, len(tw.prefixes))
	for k := range tw.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		fmt.Fprintf(tw.w, "@prefix %s: <%s> .\n", prefix, tw.prefixes[prefix])
	}
	tw.w.WriteString("\n")
}

// WriteSubject writes one subject block.
func (tw *TurtleWriter) WriteSubject(subject Term, triples []Triple) error {
	if !tw.started {
		tw.writePrefixes()
		tw.started = true
	}
	if len(triples) == 0 {
		return nil
	}

	tw.w.WriteString(tw.term(subject))
	tw.w.WriteString("\n")
	for i, t := range triples {
		predicate := tw.iri(t.Predicate)
		if t.Predicate == vocab.RdfType {
			predicate = "a"
		}
		terminator := " ;"
		if i == len(triples)-1 {
			terminator = " ."
		}
		fmt.Fprintf(tw.w, "    %s %s%s\n", predicate, tw.term(t.Object), terminator)
	}
	_, err := tw.w.WriteString("\n")
	return err
}

// Flush writes buffered output. An export with no subjects still declares
// its prefixes.
func (tw *TurtleWriter) Flush() error {
	if !tw.started {
		tw.writePrefixes()
		tw.started = true
	}
	return tw.w.Flush()
}

func (tw *TurtleWriter) term(t Term) string {
	switch t.Kind {
	case TermBlank:
		return "_:" + t.Value
	case TermLiteral:
		lit := fmt.Sprintf("\"%s\"", escapeString(t.Value))
		if t.Datatype != "" {
			lit += "^^" + tw.iri(t.Datatype)
		}
		return lit
	default:
		return tw.iri(t.Value)
	}
}

// iri abbreviates iri with the longest matching prefix.
func (tw *TurtleWriter) iri(iri string) string {
	best, bestNS := "", ""
	for prefix, ns := range tw.prefixes {
		if len(ns) > len(bestNS) && strings.HasPrefix(iri, ns) && localName.MatchString(iri[len(ns):]) {
			best, bestNS = prefix, ns
		}
	}
	if bestNS == "" {
		return "<" + iri + ">"
	}
	return best + ":" + iri[len(bestNS):]
}

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	w *bufio.Writer
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter(w io.Writer) *NTriplesWriter {
	return &NTriplesWriter{w: bufio.NewWriter(w)}
}

// WriteSubject writes one line per triple.
func (nw *NTriplesWriter) WriteSubject(_ Term, triples []Triple) error {
	for _, t := range triples {
		if err := nw.WriteTriple(t); err != nil {
			return err
		}
	}
	return nil
}

// WriteTriple writes a single triple.
func (nw *NTriplesWriter) WriteTriple(t Triple) error {
	_, err := fmt.Fprintf(nw.w, "%s <%s> %s .\n", ntriplesTerm(t.Subject), t.Predicate, ntriplesTerm(t.Object))
	return err
}

// Flush writes buffered output.
func (nw *NTriplesWriter) Flush() error {
	return nw.w.Flush()
}

func ntriplesTerm(t Term) string {
	switch t.Kind {
	case TermBlank:
		return "_:" + t.Value
	case TermLiteral:
		lit := fmt.Sprintf("\"%s\"", escapeString(t.Value))
		if t.Datatype != "" {
			lit += "^^<" + t.Datatype + ">"
		}
		return lit
	default:
		return "<" + t.Value + ">"
	}
}
