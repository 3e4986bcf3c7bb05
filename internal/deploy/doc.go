// Package deploy creates SimpleStorage instances at fresh addresses and
// keeps a registry of them in the backing store, so a persistent node can
// reopen the contracts it deployed before a restart.
package deploy
