// Package model declares a contract whose short name, model.IStore, is also
// declared by dupname/b/model.
package model

type IStore interface {
	Store() string
}
