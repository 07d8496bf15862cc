// Package gramps is a client for the Gramps Web API. It handles JWT
// token acquisition and refresh, rate limits outbound requests, and
// caches the person pool so repeated candidate searches during
// resolution do not hammer the server.
package gramps
