/*
Package atendente is a toolkit for configuring a WhatsApp virtual attendant (chatbot) served by a remote REST backend.

The backend stores the conversation as a tree of menu steps: each step has a title, a description and numbered
options, and each option leads to another step. This package loads that tree, lays it out as a positioned
node-and-edge graph and lets one step's options be edited and saved back.

# Layout

The graph is built by [flowgraph.Build] from the root step "menu_principal". Levels are the minimum depth at which
a step is reached; loops are drawn as edges without revisiting the step. In the default (collapsed) mode only the
first two levels are expanded; [Dashboard.SetExpandAll] expands every reachable step.

# Usage

	client := api.New("http://localhost:3000", api.WithSession(sess))
	dash := atendente.New(client, atendente.WithFlow(client))

	graph, err := dash.Refresh(ctx)
	if err != nil {
		return err
	}

	ed, err := dash.Edit("menu_principal")
	if err != nil {
		return err
	}
	if _, err := ed.AddOption("Falar com a secretaria"); err != nil {
		return err
	}
	graph, err = dash.Save(ctx, ed)

# Surfaces

The same Dashboard backs the `atendente` CLI (cmd/atendente), a local JSON/Mermaid HTTP server and an MCP server
exposing the graph to agents.
*/
package atendente
