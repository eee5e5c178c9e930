// Package attr stores sparse, typed, named attributes for entities identified
// by a dense integer index, such as the nodes of a graph.
//
// A Registry owns the attributes. Attach creates one and returns a Handle,
// the typed accessor used for every read, write and iteration. Detaching an
// attribute turns all of its handles invalid; they report ErrAttributeInvalid
// from then on.
package attr
