// Package doxygen extracts retrievable chunks from generated API
// reference HTML (Doxygen-style) and the markdown sources that
// accompany it.
//
// Each document yields heading-delimited semantic units; each unit is
// split into overlapping, length-bounded chunks prefixed with a short
// header (title, kind, symbol, namespace) so a chunk stays
// self-describing when retrieved out of context.
package doxygen
