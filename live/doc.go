// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package live keeps server-side documents for open pages.
//
// A page rendered by the server is parsed into a dom.Document and registered
// as a View. Browser gestures are posted back and replayed against the
// document under the view's lock, so one view never sees two events at once.
// Views idle longer than the registry's TTL are closed by Sweep.
package live
