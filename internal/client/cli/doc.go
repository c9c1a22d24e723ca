// Package cli provides the interactive tripcat command-line client.
//
// It wires configuration, local session storage, the Vacation Service client
// and an interactive REPL. Typical flow: settle any persisted session, load
// the catalog on first use, and execute user commands.
//
// Key features:
//   - Register / Login / Logout with a persisted token
//   - Browse the vacation catalog and the countries reference list
//   - Toggle likes as a traveler
//   - Create / edit / delete vacations as an administrator
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
