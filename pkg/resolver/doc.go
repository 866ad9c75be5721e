// Package resolver maps external identity assertions to local user accounts.
//
// Given a canonical profile, the Service deterministically decides whether it
// corresponds to a previously-linked identity (an existing mapping), an
// existing local account (matched by email), or a brand-new user, and
// returns the resolved local user id. The decision ordering is part of the
// contract:
//
//  1. mapping lookup by external id -- hit means an idempotent re-login with
//     no account mutation
//  2. host lookup by primary email -- hit merges into the existing account
//  3. otherwise a new account is created; host uniqueness collisions surface
//     as ErrAccountCreation
//  4. the external id is stamped on the user record and the mapping written,
//     best-effort and non-transactional; an interrupted write self-heals on
//     the next login via step 2
//
// Merging by email equality is a deliberate trust decision of the design,
// not a security boundary: anyone the provider asserts an email for is
// treated as the owner of the local account holding that address.
//
// The host's user and group storage are capability interfaces (UserStore,
// GroupStore); in-memory implementations ship for tests and demos.
package resolver
