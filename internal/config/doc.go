// Parses the project configuration into a typed model.
//
// A project declares its build in genesis/genesis.yaml under the project
// root: a list of build-time dependencies to stage into the build context,
// and a list of elements, each grouping one or more images plus deployment
// metadata. Loading validates the shape of the document and the closed sets
// of image profiles and formats, so unsupported combinations fail before any
// build starts. Unknown fields are ignored for forward compatibility.
//
// The loaded model is owned by the build run that parsed it and is not
// mutated afterwards.
package config
