// Package auth is the authentication and authorization gateway for the church
// administration backend. It decides, for every inbound request, who is making
// it, for which church (tenant), and whether the request may proceed.
//
// The package is built around a handful of small components: a TokenCodec
// that mints and verifies HMAC-signed session tokens, a TokenGate that
// classifies each request credential through a fixed sequence of checks, a
// RoutePolicy table mapping route prefixes to allowed roles, an Issuer that
// orchestrates logins against a bcrypt-backed credential store, and a
// CookieGateway that binds the whole thing to HTTP cookies.
//
// Tokens are self-contained: the gate performs no I/O, so authorization is a
// pure function of the credential, the signing key, the policy table, and the
// clock. The trade-off is that there is no server-side revocation list; an
// issued token stays valid until its natural expiry, and the only kill switch
// is rotating the signing key, which invalidates every session at once.
package auth
