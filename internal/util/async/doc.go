// Package async provides parallel task execution with error collection.
//
// [RunParallel] executes independent operations concurrently and waits for
// all of them. The provisioning engine uses it to apply every resource of a
// dependency wave at once.
package async
