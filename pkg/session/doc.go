/*
Package session manages the client's login state.

The bearer token returned by the backend is kept in a ports.SessionStore (file, memory
or Redis) together with the username. Before use the token's exp claim is checked locally,
and any 401/403 from the backend clears it, forcing a new login.
*/
package session
