// Package textutil derives canonical, externally visible project names.
//
// Folder names are folded to ASCII (accents stripped through Unicode
// decomposition), lowercased, and collapsed into hyphen-separated tokens that
// are valid as repository and site names on the hosting providers. Helpers
// also produce the short random suffixes used to disambiguate names that are
// already taken.
package textutil
