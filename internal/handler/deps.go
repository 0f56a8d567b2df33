package handler

import (
	"carelink/internal/app/message"
	"carelink/internal/app/rtc"
	"carelink/internal/app/storage"
	"carelink/internal/configs"
)

// AppDeps bundles the collaborators the HTTP layer needs.
type AppDeps struct {
	Hub            *rtc.Hub
	Config         *configs.AppConfig
	Store          message.Store
	StorageService storage.StorageService
}
