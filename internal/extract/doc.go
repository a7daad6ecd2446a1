// Package extract turns roster and ratings pages into attribute bundles.
//
// Extraction is best effort: missing structure yields empty fields, never an
// error, and callers treat an empty field as "no match possible".
package extract
