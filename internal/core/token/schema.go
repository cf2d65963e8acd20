package token

// Field describes one positional state field.
type Field struct {
	Name    string
	Default string
}

// Schema describes the positional state fields a command kind stores in its
// tokens. Fields are only ever appended so older tokens keep decoding.
type Schema struct {
	Fields []Field
}

// Len returns the number of fields in the schema.
func (s Schema) Len() int {
	return len(s.Fields)
}

// Index returns the position of the named field, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Fill returns fields padded to the schema length with defaults. Fields beyond
// the schema, written by a newer version, are dropped. Absent fields take the
// field default.
func (s Schema) Fill(fields []string) []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Default
		if i < len(fields) && fields[i] != "" {
			out[i] = fields[i]
		}
	}
	return out
}
