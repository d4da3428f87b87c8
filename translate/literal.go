package translate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360studio/owlgraph/owl"
)

const xsd = owl.XSDNamespace

var integerTypes = map[owl.IRI]bool{
	xsd + "integer":            true,
	xsd + "int":                true,
	xsd + "long":               true,
	xsd + "short":              true,
	xsd + "byte":               true,
	xsd + "nonNegativeInteger": true,
	xsd + "nonPositiveInteger": true,
	xsd + "positiveInteger":    true,
	xsd + "negativeInteger":    true,
	xsd + "unsignedLong":       true,
	xsd + "unsignedInt":        true,
	xsd + "unsignedShort":      true,
	xsd + "unsignedByte":       true,
}

var floatTypes = map[owl.IRI]bool{
	xsd + "float":   true,
	xsd + "double":  true,
	xsd + "decimal": true,
}

// TypedValue converts a literal to a property value by its datatype: the xsd
// integer family to int64, float/double/decimal to float64, boolean to bool,
// anything else to its lexical string.
func TypedValue(l owl.Literal) (any, error) {
	lex := strings.TrimSpace(l.Lexical)
	switch {
	case integerTypes[l.Datatype]:
		n, err := strconv.ParseInt(strings.TrimPrefix(lex, "+"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s literal %q: %w", l.Datatype.Fragment(), l.Lexical, err)
		}
		return n, nil
	case floatTypes[l.Datatype]:
		f, err := strconv.ParseFloat(lex, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s literal %q: %w", l.Datatype.Fragment(), l.Lexical, err)
		}
		return f, nil
	case l.Datatype == xsd+"boolean":
		switch lex {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("parse boolean literal %q", l.Lexical)
	default:
		return l.Lexical, nil
	}
}
