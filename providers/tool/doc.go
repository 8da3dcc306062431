// Package tool defines the callable capabilities the model may request.
//
// A [Tool] binds a name and description to a typed Go function and derives the
// JSON schema of its input by reflection. [GenericTool] erases the type
// parameters so tools can live in a [Catalog], the fixed registry the
// dispatcher resolves tool-call names against.
package tool
