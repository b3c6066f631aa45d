// Package extractors provides implementations of the Extractor interface
// for various file formats. Each extractor knows how to pull plain text
// out of a specific MIME type.
//
// Extractors are registered with the Registry at startup; the registry
// picks the highest-priority extractor for a given MIME type.
package extractors
