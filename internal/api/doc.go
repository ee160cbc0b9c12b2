// Package api handles incoming HTTP requests, request validation and response
// formatting. It adapts HTTP to the vocabulary service and the quiz session.
package api
