// Package xliff parses XLIFF 2.0 documents into JLIFF translation
// payloads and companion tag maps. Inline codes in segment content are
// replaced by placeholder tokens, and the information needed to restore
// the original markup is captured alongside each segment.
package xliff
