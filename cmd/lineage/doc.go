// Command lineage reconciles facts extracted from obituaries against a
// Gramps Web family tree. The pipeline runs per obituary: add the text,
// extract or import facts, resolve persons and facts against the tree,
// review and approve, then commit.
package main
