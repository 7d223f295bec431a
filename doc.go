// Package semka loads and renders sites made of documents.
//
// semka is organized around Documents and Widgets. A document is a directory
// under the site's documents root, addressed by a Path, holding a
// manifest.json that names the widget tag handling it. A Widget is the live
// object built for a document from that tag by the Registry. Widgets can
// declare other documents as dependencies and render them inside their own
// output, so a page is a tree of documents that include each other.
//
// The Tree owns every document's lifecycle. It never does I/O itself:
// Tree.Update takes a Msg and returns Effects, a list of Cmds for the host to
// run asynchronously and Msgs to dispatch right away. Widgets work the same
// way, returning Orders from their Init and Update methods instead of
// blocking. The host package has a ready-made event loop that runs Cmds and
// feeds their results back into the Tree.
//
// To render a page, pass the Tree and the Site to Render, or call Tree.View
// for the render tree itself. Documents that are still loading render as a
// placeholder and documents that failed render as an error box, so a page
// can always be rendered.
package semka
