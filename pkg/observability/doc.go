/*
Package observability provides Prometheus collectors for the dashboard.

It counts backend calls by route and status, records graph rebuilds and the size of the
last graph, and counts step saves by outcome. Every collector lives in a private registry
exposed through Handler, so several instances never collide in tests.
*/
package observability
