// Package fixturetest binds fixture sets to the testing package.
//
// Use sets up a Set for one test and tears it down through t.Cleanup.
// Shared sets up a Set once for a whole package, even when the first callers
// race from parallel tests, and is torn down from TestMain.
package fixturetest
