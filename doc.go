// Package session implements the client-side session core of the Asfalya
// insurance portal: credential and OTP exchange against the back-office REST
// API, persisted bearer-token state, and expiry-driven automatic logout.
//
// Session state:
//   - Store owns the persisted AccessToken. It writes two locations in one
//     step, a key-value Storage (the browser localStorage analog) and a
//     CookieJar entry used by the route guard, so readers never observe the
//     two disagreeing. SetSession and ClearSession are the only write paths;
//     everything else reads.
//
// Flows:
//   - Flow drives the login and account-activation state machine. Activation
//     walks request -> verify -> password, forward only, with an explicit
//     escape back to login. Failures surface as a single visible error
//     message and never advance the machine.
//
// Expiry:
//   - Monitor decodes the stored token's exp claim (without verifying the
//     signature; this is a convenience read, not a trust boundary) and arms a
//     single cancelable timer that logs the session out the moment the token
//     lapses. Real authorization happens server-side on every API call.
package session
