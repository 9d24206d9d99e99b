// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The only entity is Task. Titles are normalized and validated here so every
// entry point (HTTP handlers, service, CLI) applies the same rules.
package domain
