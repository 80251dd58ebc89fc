// Package models defines the client-side records of the marquee movie board.
//
// The package contains two categories of types:
//
// 1. Identity
//   - [Session] : the locally persisted identity and [Role] used for gating views
//
// 2. Board records, always built through [NormalizeMovie]
//   - [Movie] : a movie with its vote tallies, votes and comments
//   - [Vote] : one user's up/down vote
//   - [Comment] : a user's comment, with its vote weight resolved once into [CommentVotes]
//
// The backend is the source of truth and its payloads are not trusted to be well formed:
// normalization never fails and fills missing or malformed fields with safe defaults.
package models
