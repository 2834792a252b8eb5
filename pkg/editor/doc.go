/*
Package editor implements re-entrant editing of one step's outgoing options.

An Editor works on a private copy of the step. Nothing reaches the step map or the
backend until Save, which sends the whole option list in a single PUT:

	ed, err := editor.Open(steps, "financeiro_menu")
	if err != nil {
		return err
	}
	ed.AddOption("Segunda via de boleto")
	steps, err = ed.Save(ctx, client)

On success Save returns the patched map and closes the editor; callers rebuild the graph
from it. On failure the editor stays open with Err set and the caller's map is untouched.
*/
package editor
