// Package middleware decorates ports.SessionStore implementations.
//
// NewEncryptionMiddleware keeps the bearer token encrypted at rest so a copied
// session file or Redis dump does not leak a usable credential.
package middleware
