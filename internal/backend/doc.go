// Package backend is the HTTP client for the offers backend: package
// dimensions, the offer vocabulary, persisted offers and the login/register
// endpoints. Calls are not retried; failures are returned to the caller.
package backend
