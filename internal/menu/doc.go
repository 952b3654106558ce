// Package menu implements the single-selection terminal menu used for
// version choices, retry prompts, and push confirmation. The model consumes
// typed key events decoded at the terminal boundary and is independent of
// what the selected option does.
package menu
