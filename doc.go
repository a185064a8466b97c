// Package authstate is the client-side session core of a browser-style
// front-end: it decides who is logged in, keeps that decision in sync with
// persisted credential storage, and gates navigation on it.
//
// Session lifecycle:
//   - A Store is created once at process start in the loading state and
//     injected into every consumer. Hydrate reconciles it with the persisted
//     credential slot by validating the stored token against the identity
//     API; every failure mode degrades to logged-out, never to a crash.
//     Establish and Clear are the only other mutations, so the invariant
//     "authenticated iff a principal is present" is enforced in one place.
//   - Two session domains (admin and standard) keep separate credential
//     slots and separate identity API namespaces. They never share a token.
//
// Route guarding:
//   - Decide is a pure function from (Snapshot, AccessPolicy) to a
//     Decision. The navigation layer, not the guard, performs redirects;
//     middleware/routeguard adapts decisions for go-router and Fiber apps.
//   - DecideEntry is the inverse table for the public login/register
//     screens: authenticated visitors are bounced to their home.
//
// Sub-flows:
//   - Flow runs login (direct or deferred behind an emailed confirmation),
//     social exchange, and registration. Verification tickets arriving by
//     email are consumed exactly once by the verification handlers; a
//     spent ticket is terminal and never retried.
package authstate
