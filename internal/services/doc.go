// Package services talks to the movie board backend over HTTP.
//
// # API Client
//
// [APIService] is the single request issuer. It prefixes every path with the configured base URL, sends
// JSON content headers, forwards credentials through the client's cookie jar and optionally paces
// requests with a rate limiter. It never retries and sets no timeout.
//
// Outcomes are classified once:
//   - no response: [shared.NetworkError] (matches [shared.ErrNetwork])
//   - status >= 400: [shared.HTTPError] carrying the backend "message" (matches [shared.ErrHTTPStatus])
//   - anything else: an [APIResponse] with no error, even when the status is not 2xx
//
// # Backend
//
// [MovieService] implements [Backend], mapping each endpoint to typed results:
//
//	POST   /login                   Login
//	POST   /signup                  Signup
//	POST   /logout                  Logout
//	GET    /c/getMovies             GetMovies
//	POST   /u/addMovie              AddMovie
//	POST   /u/{id}/vote             Vote
//	POST   /u/{id}/comment          SaveComment
//	DELETE /a/{id}/delete           DeleteMovie
//	DELETE /a/{id}/{cid}/delete     DeleteComment
//
// Movie bodies are passed through [models.NormalizeMovie], so partially malformed records never fail a call.
package services
