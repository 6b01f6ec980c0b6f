package model

import "maps"

// Clone returns a deep copy of the document. Mutating the copy never
// affects d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	out := &Document{
		Teachers: maps.Clone(d.Teachers),
		Metadata: d.Metadata,
	}

	if d.Classes != nil {
		out.Classes = make(map[string]ClassRecord, len(d.Classes))
		for name, class := range d.Classes {
			class.Students = maps.Clone(class.Students)
			out.Classes[name] = class
		}
	}

	if d.Settings != nil {
		out.Settings = cloneValue(map[string]any(d.Settings)).(map[string]any)
	}

	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}
		return m
	case Settings:
		return Settings(cloneValue(map[string]any(val)).(map[string]any))
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}
		return s
	default:
		return val
	}
}
