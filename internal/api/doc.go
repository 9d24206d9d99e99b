// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting for the task resource. It acts as an adapter
// between HTTP clients and service.TaskService, translating service errors
// into status codes and fixed, safe messages.
package api
