/*
Package api is the HTTP client for the attendant backend.

Every call carries the stored bearer token. A 401 or 403 clears the session and returns
domain.ErrUnauthorized, other non-2xx answers return *domain.APIError, and transport failures
wrap domain.ErrUnavailable. Nothing is retried.

Responses are loosely typed (numeric option ids, options served as a map, destinations as a
bare number or an object) and are decoded with mapstructure in weak mode.
*/
package api
