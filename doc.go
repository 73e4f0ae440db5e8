// Package main provides the entry point of inventory-api, a JSON API for an
// equipment inventory. It issues bearer tokens on login, authorizes every
// request by role and permission and keeps the role catalog in a document
// store backed by SQLite, MySQL, PostgreSQL, Redis or Badger.
package main
