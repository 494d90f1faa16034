// Package cms describes the host content-management platform that the
// maintenance tasks run against.
//
// The platform owns sites, documents (pages), object and page version
// history, the event log and the scheduler. This package models that data
// and the collaborator interfaces the tasks call. Concrete implementations
// live in the storage and eventlog packages.
//
// # Version history
//
// Every edit of an object or page produces a historical record. Deleting an
// object or page does not remove its history; instead the newest record is
// stamped with a deletion time and the item shows up in the recycle bin.
// Destroying a recycle-bin item removes all of its history permanently.
//
//	versions, err := store.ExpiredObjectVersions(ctx, cutoff)
//	for _, v := range versions {
//	    err := store.DestroyObjectHistory(ctx, v.ObjectType, v.ObjectID)
//	    ...
//	}
package cms
