// Package httpclient builds and executes the HTTP requests a load test
// issues against its target.
package httpclient
