package handler

import (
	"github.com/plantpal/internal/plant"
	"github.com/plantpal/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	plants     *plant.Store
	companion  *service.CompanionService
	motivation *service.MotivationService
	system     *service.SystemSettingService
	log        *zap.Logger
}

// Dependencies 描述构造 API 所需的服务，DB 在非数据库存储引擎下可以为空。
type Dependencies struct {
	DB         *gorm.DB
	Plants     *plant.Store
	Companion  *service.CompanionService
	Motivation *service.MotivationService
	System     *service.SystemSettingService
	Logger     *zap.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Dependencies) *API {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	system := deps.System
	if system == nil {
		system = service.NewSystemSettingService(deps.DB, service.SystemSettings{})
	}
	companion := deps.Companion
	if companion == nil {
		companion = service.NewCompanionService(nil, log)
	}
	motivation := deps.Motivation
	if motivation == nil {
		motivation = service.NewMotivationService(nil, log)
	}

	return &API{
		db:         deps.DB,
		plants:     deps.Plants,
		companion:  companion,
		motivation: motivation,
		system:     system,
		log:        log,
	}
}
