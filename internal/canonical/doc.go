// Package canonical renders plain Go values to RFC 8785 canonical JSON and
// derives content fingerprints from them.
//
// Canonical output is used wherever two renderings of the same data must be
// byte-identical: aggregate fingerprints, journal properties and golden
// scenario traces.
//
// Accepted values: string, bool, int, int64, []any, []string, map[string]any
// and map[string]string. Floats and nil are rejected so that a rendering can
// never depend on number formatting or on the difference between an absent
// key and a null one.
package canonical
