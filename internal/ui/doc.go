// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the route table of the auth package:
//  1. [LoginView] : sign in or sign up (the public "/" route)
//  2. [HomeView] : the movie board for the session's role ("/admin/home" or "/user/home")
//  3. [UnauthorizedView] : shown when the gate redirects a signed-in user
//
// Every navigation goes through [auth.Routes.Resolve], so the gate decides which view renders. The
// (view) [Model] implements the standard Init/Update/View pattern, receiving messages via the Msg union type.
//
// All mutations are delegated to a [movies.Controller]. Its notices and confirmation prompts reach the
// model through channels, so controller actions can run as commands without blocking rendering.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, y/n, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
