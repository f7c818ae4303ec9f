// Package types defines the content node model, the detail bag, the trash
// metadata contract, the collaborator interfaces consumed by the trash
// manager, and the standard error values for recyclebin.
//
// Nodes form a tree under a single root. Entity methods modify the struct in
// memory; callers persist changes through a Persister.
package types
