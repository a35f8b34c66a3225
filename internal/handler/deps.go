package handler

import (
	"paperboard/internal/app/collab"
	"paperboard/internal/app/folder"
	"paperboard/internal/configs"
)

// AppDeps bundles the dependencies every handler constructor receives. The
// registry is built once in main and injected here; nothing in the handler
// layer owns global state.
type AppDeps struct {
	Config   *configs.AppConfig
	Registry *collab.Registry
	Folders  folder.Store
}
