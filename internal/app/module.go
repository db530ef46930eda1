package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/opsfloor/licensehub/internal/app/api/server"
	"github.com/opsfloor/licensehub/internal/app/service/audit"
	"github.com/opsfloor/licensehub/internal/app/service/license"
	"github.com/opsfloor/licensehub/internal/app/service/order"
	"github.com/opsfloor/licensehub/internal/app/service/purchase"
	"github.com/opsfloor/licensehub/internal/app/service/signing"
	"github.com/opsfloor/licensehub/internal/platform/db"
	"github.com/opsfloor/licensehub/pkg/config"
	"github.com/opsfloor/licensehub/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	signing.Module,
	audit.Module,
	license.Module,
	purchase.Module,
	order.Module,
)
