package repository

import (
	"fmt"
	"strings"
)

// ProductPatch lists the product columns a partial update may set.
// Nil fields are left untouched.
type ProductPatch struct {
	Name         *string
	Description  *string
	Material     *string
	Category     *string
	Options      *string
	IsNew        *bool
	IsFeatured   *bool
	Marca        *string
	Gramaje      *string
	BrandIconURL *string
}

type assignment struct {
	column string
	value  interface{}
}

func (p ProductPatch) assignments() []assignment {
	var out []assignment
	add := func(column string, set bool, value interface{}) {
		if set {
			out = append(out, assignment{column: column, value: value})
		}
	}
	add("name", p.Name != nil, deref(p.Name))
	add("description", p.Description != nil, deref(p.Description))
	add("material", p.Material != nil, deref(p.Material))
	add("category", p.Category != nil, deref(p.Category))
	add("options", p.Options != nil, deref(p.Options))
	add("is_new", p.IsNew != nil, derefBool(p.IsNew))
	add("is_featured", p.IsFeatured != nil, derefBool(p.IsFeatured))
	add("marca", p.Marca != nil, deref(p.Marca))
	add("gramaje", p.Gramaje != nil, deref(p.Gramaje))
	add("brand_icon_url", p.BrandIconURL != nil, deref(p.BrandIconURL))
	return out
}

// IsEmpty reports whether the patch sets no column.
func (p ProductPatch) IsEmpty() bool {
	return len(p.assignments()) == 0
}

// BuildUpdate renders the UPDATE statement for p against product id.
// ok is false when p sets nothing.
func BuildUpdate(id int, p ProductPatch) (query string, args []interface{}, ok bool) {
	sets := p.assignments()
	if len(sets) == 0 {
		return "", nil, false
	}

	clauses := make([]string, 0, len(sets)+1)
	args = make([]interface{}, 0, len(sets)+1)
	for i, s := range sets {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", s.column, i+1))
		args = append(args, s.value)
	}
	clauses = append(clauses, "updated_at = NOW()")
	args = append(args, id)

	query = fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(clauses, ", "), len(args))
	return query, args, true
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func derefBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}
