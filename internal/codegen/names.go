package codegen

import "strings"

// exportedName turns a DBC identifier (upper-snake by convention, but
// not always) into an exported Go identifier, the same "split on
// separators, Title-case each part" rule
// other_examples/BIwashi-candecode__parser.go uses for its protobuf
// name mapping, reused here for Go identifiers instead.
func exportedName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		if len(part) > 1 {
			b.WriteString(strings.ToLower(part[1:]))
		}
	}
	name := b.String()
	if name == "" {
		return "Field"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "X" + name
	}
	return name
}

// unexportedName lower-cases the first rune of exportedName's result,
// giving the unexported spelling of the same identifier. Emit does not
// call it: the emitted decodeX functions are named by prefixing the
// exported field name.
func unexportedName(s string) string {
	n := exportedName(s)
	return strings.ToLower(n[:1]) + n[1:]
}
