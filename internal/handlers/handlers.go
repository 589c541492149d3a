package handlers

import (
	"localtube/internal/library"
	"localtube/internal/startup"
	"localtube/internal/state"
	"localtube/internal/thumbnail"
)

type Handlers struct {
	catalog *library.Catalog
	state   *state.Store
	thumbs  *thumbnail.Generator
	config  *startup.Config
}

func New(catalog *library.Catalog, store *state.Store, config *startup.Config) *Handlers {
	return &Handlers{
		catalog: catalog,
		state:   store,
		thumbs:  thumbnail.NewGenerator(config.ThumbnailDir),
		config:  config,
	}
}
