// Package render runs block plugins and keeps their output in a
// tag-indexed render cache backed by a fiber.Storage.
package render
