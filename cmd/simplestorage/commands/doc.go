// Package commands implements the simplestorage CLI: a node server plus
// client commands to deploy SimpleStorage contracts and to set and read
// their values.
package commands
