// Package relink points the mtllib statements of every .obj mesh file in a
// directory tree at one shared material library.
//
// Each directory is processed on its own: the mesh files directly inside it
// are rewritten in place, and with cleanup enabled the material files they
// referenced are deleted relative to that same directory. A run stops at the
// first error; files handled before it stay rewritten.
package relink
