// Package mcp exposes the flow graph to Model Context Protocol clients.
//
// Tools: get_flow_graph, get_flow_mermaid and get_step. Resource: atendente://graph.
package mcp
