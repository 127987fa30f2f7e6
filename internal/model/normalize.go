package model

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText returns s in Unicode NFC form.
//
// Titles and item text are normalized before they are stored so that two
// visually identical titles compare (and therefore sort and seek) equal.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// FoldText returns the NFC form of s with Unicode case folding applied.
// Title search compares folded text on both sides.
func FoldText(s string) string {
	return norm.NFC.String(cases.Fold().String(norm.NFC.String(s)))
}

// Normalize normalizes the textual fields of the payload in place.
func (f *RecipeFields) Normalize() {
	f.Title = NormalizeText(f.Title)
	f.Note = NormalizeText(f.Note)
	if f.Yield != nil {
		y := NormalizeText(*f.Yield)
		f.Yield = &y
	}
}

// Normalize normalizes the payload. The item slices are copied first so
// the caller's backing arrays are left untouched.
func (c *RecipeCreate) Normalize() {
	c.RecipeFields.Normalize()
	c.Instructions = append([]string(nil), c.Instructions...)
	c.Ingredients = append([]string(nil), c.Ingredients...)
	for i := range c.Instructions {
		c.Instructions[i] = NormalizeText(c.Instructions[i])
	}
	for i := range c.Ingredients {
		c.Ingredients[i] = NormalizeText(c.Ingredients[i])
	}
}

// Normalize normalizes the payload, copying the item slices first.
func (u *RecipeUpdate) Normalize() {
	u.RecipeFields.Normalize()
	u.Instructions = append([]ItemUpdate(nil), u.Instructions...)
	u.Ingredients = append([]ItemUpdate(nil), u.Ingredients...)
	for i := range u.Instructions {
		u.Instructions[i].Text = NormalizeText(u.Instructions[i].Text)
	}
	for i := range u.Ingredients {
		u.Ingredients[i].Text = NormalizeText(u.Ingredients[i].Text)
	}
}
