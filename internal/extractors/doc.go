// Package extractors provides TextExtractor implementations that turn
// uploaded documents into plain text. Each extractor handles specific
// MIME types and is selected through the Registry.
package extractors
