// Package api hosts the HTTP surfaces of the service.
//
// The public router answers a single route:
//   - GET /?url=<page> returns the JSON page summary, served from the cache
//     when an unexpired entry exists and analyzed (then cached) otherwise.
//
// Everything else is a JSON 404. Health, readiness and Prometheus metrics live
// on a separate admin router (NewAdminHandler) so the public surface stays
// minimal.
package api
