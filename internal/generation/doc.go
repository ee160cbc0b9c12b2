// Package generation defines the boundary between the application core and
// the external Content Generator. Given a headword, a Generator returns a
// translation, part of speech, example sentences, an optional conjugation
// table and pronunciation hints. Adapters such as the Gemini one live under
// internal/platform.
package generation
