// Package backend opens the account store selected by configuration along
// with the connections it needs, and builds the event emitter that goes with
// it. Both the HTTP server and the interactive CLI start from here.
package backend
