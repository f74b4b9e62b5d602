// Package onetime is a single-use signet backend: the token is an opaque
// random id, the claims live in external storage, and the record is
// consumed atomically on first successful verification. A second decode of
// the same token — or any decode after revocation — fails with
// signet.ErrTokenNotFoundOrExpired. Absence and expiry are deliberately
// indistinguishable at lookup time.
//
// Two [Store] implementations ship with the package: [RedisStore]
// (go-redis, records expire via key TTL) and [SQLiteStore] (modernc.org
// driver, expiry checked at lookup). At-most-once consumption is the
// store's contract: Redis GETDEL and SQLite's delete-rows-affected check
// both guarantee that concurrent consumers of one token cannot all
// succeed.
package onetime
