// Package state persists stack snapshots.
//
// A [Snapshot] records what the engine created for one stack: provider
// ids, declared inputs, reported attributes and the resolved exports. It
// is stored as YAML under <cloud_id>/<folder_id>/<stack>.yaml in either a
// local directory ([FileStore]) or an S3-compatible bucket ([S3Store]).
package state
