// Package services provides shared helpers for pipeline stages: an error
// taxonomy with classification sentinels, and context annotation for
// chapter, segment, and stage identifiers carried through logging.
package services
