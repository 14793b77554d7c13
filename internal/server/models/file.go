package models

// StoredFile describes one object in a user's file namespace. PhysicalKey is
// the storage key derived from (Owner, LogicalName); the bytes themselves live
// in the blob store.
type StoredFile struct {
	Owner       string
	LogicalName string
	PhysicalKey string
	SizeBytes   int64
}
