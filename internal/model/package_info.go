// Package model contains the data types shared by the client components: toggles, variants and the
// evaluation context, along with the canonical serialization of a context.
package model
