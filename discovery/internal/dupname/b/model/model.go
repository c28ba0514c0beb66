// Package model declares the second model.IStore.
package model

type IStore interface {
	Store() string
}
