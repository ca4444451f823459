// Package views renders the pages and fragments of the web front as templ
// components.
//
// Pages are wrapped by Render in the shell their route declares. Fragments
// that live updates replace carry a stable element id (UserMenu is
// #user-menu, SyncIndicator is #sync-indicator, ThemeToggle is
// #theme-toggle) so datastar can patch them in place.
package views
