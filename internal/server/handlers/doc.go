// Package handlers provides general infrastructure HTTP handlers
// (health, version etc).
package handlers
