/*
Package ports defines the interfaces between the dashboard core and its collaborators.

These interfaces decouple the flow builder, the step editor and the surfaces (CLI, HTTP, MCP)
from the REST backend and from where client state is kept.

# Key Interfaces

  - MenuService: Loads the step map and persists edits of one step.
  - FlowService: Reads and patches the /api/fluxo document.
  - SessionStore: Persists the bearer token and username between runs.
  - Locker: Non-blocking locks that reject duplicate in-flight saves.
*/
package ports
