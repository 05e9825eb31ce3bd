// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package pages renders the HTML pages served to organizers as templ
// components backed by the embedded html/template files under templates/.
// The same markup seeds the server-side documents of live views, so the
// selectors exported here are shared with the handlers.
package pages
