// Package services defines the [Service] interface for the remote catalog and implements it for Discogs.
//
// # Discogs Implementation
//
// [DiscogsService] is a read-only client for three endpoints:
//   - GET /users/{user}/collection/folders/0/releases : paginated collection
//   - GET /masters/{id} : master record, used to backfill missing years
//   - GET /releases/{id} : track listing and videos
//
// Authentication uses a personal access token. The client wraps its transport in an [oauth2.Transport]
// with a static token source whose token type is "Discogs", so every request carries
// "Authorization: Discogs token=<token>". No authorization flow is performed.
//
// Every request first waits on a [rate.Limiter] (60 requests per minute by default) and is bounded by
// the client timeout and the caller's context.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : user id or token missing when constructing the client
//   - [shared.ErrNotFound] : the endpoint returned 404
//   - [shared.ErrUpstreamUnavailable] : transport failure, timeout, non-2xx status or undecodable body
package services
