package schema

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/neurobagel/digest/internal/types"
)

// columnDef mirrors the attribute block of one column in a schema
// definition file. Description, dtype, and IsRequired are mandatory;
// pointers distinguish absent keys from zero values.
type columnDef struct {
	Description      *string  `json:"Description"`
	DType            *string  `json:"dtype"`
	IsRequired       *bool    `json:"IsRequired"`
	Range            []string `json:"Range"`
	MissingValue     *string  `json:"MissingValue"`
	IsPrefixedColumn bool     `json:"IsPrefixedColumn"`
	Label            string   `json:"Label"`
}

// Parse builds a Schema from a JSON schema definition. The definition maps
// category names to column identifiers to attribute blocks. Parsing is
// strict: unknown attribute keys, missing mandatory attributes, duplicate
// labels, range or missing-value declarations on unsupported dtypes, and
// prefix collisions are all SCHEMA_PARSE_FAILED errors.
func Parse(id string, data []byte) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw map[string]map[string]columnDef
	if err := dec.Decode(&raw); err != nil {
		return nil, types.WrapError(types.SCHEMA_PARSE_FAILED, "decoding schema definition", err)
	}
	if dec.More() {
		return nil, types.NewError(types.SCHEMA_PARSE_FAILED, "trailing data after schema definition")
	}
	if len(raw) == 0 {
		return nil, types.NewError(types.SCHEMA_PARSE_FAILED, "schema definition declares no column categories")
	}

	s := &Schema{
		id:    id,
		exact: make(map[string]*ColumnSpec),
	}

	// Map iteration order is random; sort categories and column ids so the
	// column slice and error reporting are deterministic.
	categories := make([]string, 0, len(raw))
	for cat := range raw {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		ids := make([]string, 0, len(raw[cat]))
		for colID := range raw[cat] {
			ids = append(ids, colID)
		}
		sort.Strings(ids)

		for _, colID := range ids {
			def := raw[cat][colID]
			spec, err := def.spec(cat, colID)
			if err != nil {
				return nil, err
			}
			if err := s.add(spec); err != nil {
				return nil, err
			}
		}
	}

	if len(s.columns) == 0 {
		return nil, types.NewError(types.SCHEMA_PARSE_FAILED, "schema definition declares no columns")
	}

	if err := s.checkPrefixCollisions(); err != nil {
		return nil, err
	}

	// Longest prefix first, label order on ties, so Classify is
	// deterministic when families overlap.
	sort.Slice(s.prefixed, func(i, j int) bool {
		a, b := s.prefixed[i].Label, s.prefixed[j].Label
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	s.keys = deriveKeys(s)
	return s, nil
}

// spec validates one attribute block and builds its ColumnSpec.
func (d columnDef) spec(category, colID string) (*ColumnSpec, error) {
	if colID == "" {
		return nil, types.NewErrorf(types.SCHEMA_PARSE_FAILED, "category %s declares a column with an empty identifier", category)
	}
	if d.Description == nil {
		return nil, types.NewErrorf(types.SCHEMA_PARSE_FAILED, "column %s.%s: missing mandatory attribute Description", category, colID)
	}
	if d.DType == nil {
		return nil, types.NewErrorf(types.SCHEMA_PARSE_FAILED, "column %s.%s: missing mandatory attribute dtype", category, colID)
	}
	if d.IsRequired == nil {
		return nil, types.NewErrorf(types.SCHEMA_PARSE_FAILED, "column %s.%s: missing mandatory attribute IsRequired", category, colID)
	}

	dtype := DType(*d.DType)
	if !dtype.IsValid() {
		return nil, types.NewErrorf(types.SCHEMA_PARSE_FAILED, "column %s.%s: unsupported dtype %q", category, colID, *d.DType)
	}
	if dtype == DTypeBool && len(d.Range) > 0 {
		return nil, types.NewErrorf(types.SCHEMA_PARSE_FAILED, "column %s.%s: Range is not supported for dtype bool", category, colID)
	}
	if dtype == DTypeBool && d.MissingValue != nil {
		return nil, types.NewErrorf(types.SCHEMA_PARSE_FAILED, "column %s.%s: MissingValue is not supported for dtype bool", category, colID)
	}

	label := d.Label
	if label == "" {
		label = colID
	}
	if d.IsPrefixedColumn {
		// Prefixed families are conventionally keyed with a trailing
		// separator (e.g. "PHASE__"); the label stores the bare prefix.
		label = strings.TrimSuffix(label, "__")
		if label == "" {
			return nil, types.NewErrorf(types.SCHEMA_PARSE_FAILED, "column %s.%s: prefixed column has an empty label", category, colID)
		}
		if *d.IsRequired {
			return nil, types.NewErrorf(types.SCHEMA_PARSE_FAILED, "column %s.%s: a prefixed column cannot be required", category, colID)
		}
	}

	return &ColumnSpec{
		Label:        label,
		Category:     category,
		Description:  *d.Description,
		DType:        dtype,
		Required:     *d.IsRequired,
		Range:        d.Range,
		MissingValue: d.MissingValue,
		Prefixed:     d.IsPrefixedColumn,
	}, nil
}

// add registers a spec, rejecting duplicate labels within each family.
func (s *Schema) add(spec *ColumnSpec) error {
	if spec.Prefixed {
		for _, p := range s.prefixed {
			if p.Label == spec.Label {
				return types.NewErrorf(types.SCHEMA_PARSE_FAILED, "duplicate prefixed column label %q", spec.Label)
			}
		}
		s.prefixed = append(s.prefixed, spec)
	} else {
		if _, ok := s.exact[spec.Label]; ok {
			return types.NewErrorf(types.SCHEMA_PARSE_FAILED, "duplicate column label %q", spec.Label)
		}
		s.exact[spec.Label] = spec
	}
	s.columns = append(s.columns, spec)
	return nil
}

// checkPrefixCollisions rejects prefixed labels that shadow exact labels:
// a header could otherwise classify as both the exact column and an
// instance of the family.
func (s *Schema) checkPrefixCollisions() error {
	for _, p := range s.prefixed {
		if _, ok := s.exact[p.Label]; ok {
			return types.NewErrorf(types.SCHEMA_PARSE_FAILED, "prefixed column label %q collides with column %q", p.Label, p.Label)
		}
		for label := range s.exact {
			if strings.HasPrefix(label, p.Label+"__") {
				return types.NewErrorf(types.SCHEMA_PARSE_FAILED, "prefixed column label %q collides with column %q", p.Label, label)
			}
		}
	}
	return nil
}
