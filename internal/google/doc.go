// Package google provides OAuth2 credential management for the Google Sheets
// and Drive APIs.
//
// The CredentialStore owns the stored credential for one account: atomic
// JSON persistence, scope verification, and single-flight token refresh with
// a safety margin so in-flight API calls never carry an expired token. The
// store also exposes the consent flow (AuthURL / Exchange), which is invoked
// only by the auth CLI command, never inline by request handling.
//
// API clients authenticate through a token source backed by the store, so
// every outgoing request observes the same refresh guarantee.
package google
