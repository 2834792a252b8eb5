/*
Package domain defines the typed model of the virtual attendant configuration.

The backend serves menus as a loosely typed mapping of step id to step. This package
turns it into a strongly typed directed graph:

  - StepID: identifier of a menu step ("menu_principal", "financeiro_menu", ...).
  - Step and Option: a step and its labeled outgoing transitions.
  - StepMap: the full mapping, resolved once by Resolve so every Option carries its Target.
  - TerminalSet: the "end conversation" sentinels.

It also holds the other configuration records (messages, transfer destinations, automated
actions, WhatsApp instances), the validation rules that run before any request is sent,
and the sentinel errors shared by every adapter.
*/
package domain
