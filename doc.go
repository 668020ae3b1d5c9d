// Package grove serves a category tree (categories → groups → projects) to
// interactive diagram front-ends. It loads one dataset into an immutable
// in-memory snapshot and answers queries against it.
//
// # Usage
//
// Create an Engine for a dataset file and query it:
//
//	e, err := grove.New("data/tree.json",
//		grove.WithScriptsFS(scripts.FS),
//		grove.WithPrepareScript("prepare/default.risor"))
//	if err != nil { ... }
//
//	q := e.Query()
//	tree := q.SearchTree("alpha")
//
// # Query API
//
// The [QueryBuilder] returned by [Engine.Query] provides:
//
//   - [QueryBuilder.Search]: depth-first search by [ByText] or
//     [ByIdentifiers], returning one [Path] per distinct matched name.
//   - [QueryBuilder.Prune]: a copy of the tree cut down to the branches
//     leading to a set of paths, with matches flagged.
//   - [QueryBuilder.SearchTree]: Search by text followed by Prune.
//   - [QueryBuilder.SimilarGroups]: the origin project and its similar
//     groups, as an annotated tree or a flat list.
//   - [QueryBuilder.Expand]: a node with one level of children.
//   - [QueryBuilder.Parents]: the named nodes holding a given guid.
//   - [QueryBuilder.Related]: the nodes carrying any of a set of guids.
//
// A QueryBuilder keeps answering from the snapshot it was created on, so
// a request sees one consistent dataset even across [Engine.Reload].
//
// # Datasets
//
// Datasets are tree JSON or SQLite files written by store.SaveFile. Every
// load can renumber tokens ([WithAssignTokens]) and run a Risor prepare
// script ([WithPrepareScript]) that excludes or renames nodes before the
// tree is validated and installed.
package grove
