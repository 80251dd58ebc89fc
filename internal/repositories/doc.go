// Package repositories provides persistence for the local client profile.
//
// The profile is a SQLite database (see shared.OpenProfile) holding a single key-value table.
// [KVRepository] is the only repository; the session store and the cookie jar keep their state there.
package repositories
